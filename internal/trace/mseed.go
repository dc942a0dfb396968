package trace

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/GeoNet/kit/seis/ms"

	"github.com/uafgeotools/cube-convert/internal/seed"
)

// the record length of the miniSEED records.  Constant for all GIPPtools
// written files and for everything this pipeline writes.
const recordLength = 512

// data begins at the first 8 byte aligned offset past the fixed header and
// the single blockette 1000.
const dataOffset = 64

// samples per record for the two output encodings.
const (
	samplesPerInt32Record   = (recordLength - dataOffset) / 4
	samplesPerFloat64Record = (recordLength - dataOffset) / 8
)

// suffixes recognised as DATA-CUBE channel slot markers on cut file names.
var slotSuffixes = map[string]bool{
	".pri0": true,
	".pri1": true,
	".pri2": true,
}

// ReadFile reads a single stream miniSEED file in 512 byte records and
// returns it as a Segment of raw counts.  The segment start time and
// sample rate come from the first record; the channel slot suffix, if the
// file carries one, comes from the file name.
func ReadFile(path string) (*Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var counts []int32
	var start time.Time
	var rate float64

	record := make([]byte, recordLength)

	first := true
loop:
	for {
		_, err := io.ReadFull(f, record)
		switch {
		case err == io.EOF:
			break loop
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		r, err := ms.NewRecord(record)
		if err != nil {
			return nil, fmt.Errorf("unpacking %s: %w", path, err)
		}

		if first {
			start = r.StartTime()
			rate = r.SampleRate()
			first = false
		}

		samples, err := r.Int32s()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}

		counts = append(counts, samples...)
	}

	if first {
		return nil, fmt.Errorf("no miniSEED records in %s", path)
	}

	s := NewSegment(start, rate, counts)
	s.Path = path
	if ext := filepath.Ext(path); slotSuffixes[ext] {
		s.Suffix = ext
	}

	return s, nil
}

// WriteFile writes the segment to path as 512 byte big endian miniSEED
// records carrying identity id.  Calibrated segments are written with the
// FLOAT64 encoding, uncalibrated ones keep their integer counts with the
// INT32 encoding.
func WriteFile(path string, s *Segment, id seed.Identity) error {
	b, err := Marshal(s, id)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Marshal encodes the segment as miniSEED records carrying identity id.
func Marshal(s *Segment, id seed.Identity) ([]byte, error) {
	factor, multiplier, err := rateFactors(s.SampleRate)
	if err != nil {
		return nil, err
	}

	perRecord := samplesPerInt32Record
	if s.calibrated {
		perRecord = samplesPerFloat64Record
	}

	var buf bytes.Buffer

	n := s.NumSamples()
	for i, seq := 0, 1; i < n; i, seq = i+perRecord, seq+1 {
		m := i + perRecord
		if m > n {
			m = n
		}

		start := s.Start.Add(time.Duration(float64(i) * float64(time.Second) / s.SampleRate))

		record := make([]byte, recordLength)

		var h ms.RecordHeader
		h.SetSeqNumber(seq)
		h.DataQualityIndicator = 'D'
		h.ReservedByte = ' '
		h.SetNetwork(id.Network)
		h.SetStation(id.Station)
		h.SetLocation(id.Location)
		h.SetChannel(id.Channel)
		h.SetStartTime(start)
		h.NumberOfSamples = uint16(m - i)
		h.SampleRateFactor = factor
		h.SampleRateMultiplier = multiplier
		h.NumberOfBlockettesThatFollow = 1
		h.BeginningOfData = dataOffset
		h.FirstBlockette = ms.RecordHeaderSize

		copy(record, ms.EncodeRecordHeader(h))
		copy(record[ms.RecordHeaderSize:], ms.EncodeBlocketteHeader(ms.BlocketteHeader{BlocketteType: 1000}))

		b1000 := ms.Blockette1000{
			WordOrder:    uint8(ms.BigEndian),
			RecordLength: 9, // 2**9 == 512
		}

		switch {
		case s.calibrated:
			b1000.Encoding = uint8(ms.EncodingIEEEDouble)
			for j, v := range s.units[i:m] {
				binary.BigEndian.PutUint64(record[dataOffset+j*8:], math.Float64bits(v))
			}
		default:
			b1000.Encoding = uint8(ms.EncodingInt32)
			for j, v := range s.counts[i:m] {
				binary.BigEndian.PutUint32(record[dataOffset+j*4:], uint32(v))
			}
		}

		copy(record[ms.RecordHeaderSize+ms.BlocketteHeaderSize:], ms.EncodeBlockette1000(b1000))

		buf.Write(record)
	}

	return buf.Bytes(), nil
}

// rateFactors converts a sampling rate in Hz to the SEED header factor and
// multiplier pair.  DATA-CUBE rates are whole numbers of samples per
// second or whole numbers of seconds per sample.
func rateFactors(rate float64) (factor, multiplier int16, err error) {
	switch {
	case rate >= 1 && rate == math.Trunc(rate) && rate <= math.MaxInt16:
		return int16(rate), 1, nil
	case rate > 0 && rate < 1 && 1/rate == math.Trunc(1/rate) && 1/rate <= math.MaxInt16:
		return int16(-1 / rate), 1, nil
	default:
		return 0, 0, fmt.Errorf("cannot encode sample rate %g Hz", rate)
	}
}
