package table

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tuple2048/board"
	"github.com/domino14/tuple2048/tinymove"
)

// Snapshot layout:
//
//	header (uncompressed, 32 bytes)
//	  magic     [4]byte "T2TB"
//	  version   uint8
//	  codec     uint8
//	  reserved  [2]byte
//	  numTuples uint64
//	  step      float64   quantization step of stored probabilities
//	  count     uint64    number of stored records
//	body (compressed with codec)
//	  uvarint   length of the serialized key bitmap
//	  []byte    roaring64 bitmap of stored keys
//	  per key, in ascending order:
//	    uint8   move
//	    uvarint probability level; prob = level * step
//	  uint64    xxhash of (key, move, level) over all records
const (
	snapshotVersion = 1
	headerSize      = 32
)

var snapshotMagic = [4]byte{'T', '2', 'T', 'B'}

var (
	ErrBadMagic     = errors.New("not a tuple table snapshot")
	ErrBadVersion   = errors.New("unsupported snapshot version")
	ErrSizeMismatch = errors.New("snapshot was written for a different key space")
	ErrChecksum     = errors.New("snapshot checksum mismatch")
	ErrCorrupt      = errors.New("snapshot is corrupt")
)

// KeepFunc decides whether a record is written to a snapshot.
type KeepFunc func(tm tinymove.TinyMove) bool

// quantStep returns the probability step used for a save threshold. A
// threshold of 0 keeps the native resolution.
func quantStep(threshold float64) float64 {
	if threshold <= tinymove.Resolution || math.IsNaN(threshold) {
		return tinymove.Resolution
	}
	if threshold > 1 {
		return 1
	}
	return threshold
}

// Quantize returns prob rounded to the nearest multiple of the step
// implied by threshold, as it would read back after a save and load.
func Quantize(prob, threshold float64) float64 {
	step := quantStep(threshold)
	return math.Min(1, float64(quantLevel(prob, step))*step)
}

func quantLevel(prob, step float64) uint64 {
	return uint64(math.Round(prob / step))
}

// maxBitmapBytes bounds the serialized key bitmap for a key space: one bit
// per key plus container headers.
func maxBitmapBytes(numTuples uint64) uint64 {
	return numTuples/8 + (numTuples>>16+1)*16 + 1<<10
}

type header struct {
	codec     Codec
	numTuples uint64
	step      float64
	count     uint64
}

func (h header) marshal() []byte {
	buf := make([]byte, headerSize)
	copy(buf, snapshotMagic[:])
	buf[4] = snapshotVersion
	buf[5] = byte(h.codec)
	binary.LittleEndian.PutUint64(buf[8:], h.numTuples)
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(h.step))
	binary.LittleEndian.PutUint64(buf[24:], h.count)
	return buf
}

func unmarshalHeader(buf []byte) (header, error) {
	var h header
	if [4]byte(buf[:4]) != snapshotMagic {
		return h, ErrBadMagic
	}
	if buf[4] != snapshotVersion {
		return h, fmt.Errorf("%w: %d", ErrBadVersion, buf[4])
	}
	h.codec = Codec(buf[5])
	h.numTuples = binary.LittleEndian.Uint64(buf[8:])
	h.step = math.Float64frombits(binary.LittleEndian.Uint64(buf[16:]))
	h.count = binary.LittleEndian.Uint64(buf[24:])
	if !(h.step > 0 && h.step <= 1) {
		return h, ErrCorrupt
	}
	return h, nil
}

func recordDigest(d hash.Hash64, buf []byte, key uint64, move uint8, level uint64) {
	binary.LittleEndian.PutUint64(buf[0:], key)
	buf[8] = move
	binary.LittleEndian.PutUint64(buf[9:], level)
	d.Write(buf[:17])
}

// Save writes every valid record accepted by keep to path, quantizing
// probabilities to the step implied by threshold. It returns the number of
// records written. The file is written to a temporary name and renamed
// into place, so a crash never leaves a half-written snapshot behind.
func (t *Table) Save(path string, keep KeepFunc, threshold float64, codec Codec) (int, error) {
	step := quantStep(threshold)
	keys := roaring64.New()
	t.ForEach(func(key uint64, tm tinymove.TinyMove) bool {
		if keep == nil || keep(tm) {
			keys.Add(key)
		}
		return true
	})
	bm, err := keys.MarshalBinary()
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp)

	h := header{codec: codec, numTuples: t.numTuples, step: step, count: keys.GetCardinality()}
	fw := bufio.NewWriterSize(f, 1<<20)
	if _, err := fw.Write(h.marshal()); err != nil {
		f.Close()
		return 0, err
	}
	cw, err := newCompressor(fw, codec)
	if err != nil {
		f.Close()
		return 0, err
	}
	w := bufio.NewWriterSize(cw, 1<<20)

	var scratch [binary.MaxVarintLen64 + 17]byte
	n := binary.PutUvarint(scratch[:], uint64(len(bm)))
	w.Write(scratch[:n])
	w.Write(bm)

	digest := xxhash.New()
	written := 0
	it := keys.Iterator()
	for it.HasNext() {
		key := it.Next()
		tm := t.Get(key)
		move := uint8(tm.Move())
		level := quantLevel(tm.Prob(), step)
		w.WriteByte(move)
		n := binary.PutUvarint(scratch[:], level)
		w.Write(scratch[:n])
		recordDigest(digest, scratch[:], key, move, level)
		written++
	}
	binary.LittleEndian.PutUint64(scratch[:8], digest.Sum64())
	w.Write(scratch[:8])

	if err := w.Flush(); err != nil {
		f.Close()
		return 0, err
	}
	if err := cw.Close(); err != nil {
		f.Close()
		return 0, err
	}
	if err := fw.Flush(); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, err
	}
	log.Info().Str("path", path).Int("records", written).
		Float64("step", step).Str("codec", codec.String()).
		Msg("snapshot-saved")
	return written, nil
}

// Load replaces the table's contents with the snapshot at path and returns
// the number of records read. On any error the table is left empty: a
// missing or damaged snapshot only costs recomputation.
func (t *Table) Load(path string) (int, error) {
	t.Reset()
	n, err := t.load(path)
	if err != nil {
		t.Reset()
		return 0, err
	}
	return n, nil
}

func (t *Table) load(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	fr := bufio.NewReaderSize(f, 1<<20)
	hbuf := make([]byte, headerSize)
	if _, err := io.ReadFull(fr, hbuf); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	h, err := unmarshalHeader(hbuf)
	if err != nil {
		return 0, err
	}
	if h.numTuples != t.numTuples {
		return 0, fmt.Errorf("%w: have %d, snapshot %d", ErrSizeMismatch, t.numTuples, h.numTuples)
	}
	cr, err := newDecompressor(fr, h.codec)
	if err != nil {
		return 0, err
	}
	defer cr.Close()
	r := bufio.NewReaderSize(cr, 1<<20)

	bmLen, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if bmLen > maxBitmapBytes(t.numTuples) {
		return 0, fmt.Errorf("%w: key bitmap of %d bytes", ErrCorrupt, bmLen)
	}
	// grows with the data actually read, so a damaged length runs into EOF
	// instead of a huge allocation
	var bm bytes.Buffer
	if _, err := io.CopyN(&bm, r, int64(bmLen)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	keys := roaring64.New()
	if err := keys.UnmarshalBinary(bm.Bytes()); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if keys.GetCardinality() != h.count {
		return 0, ErrCorrupt
	}
	if h.count > 0 && keys.Maximum() >= t.numTuples {
		return 0, ErrCorrupt
	}

	var scratch [17]byte
	digest := xxhash.New()
	read := 0
	it := keys.Iterator()
	for it.HasNext() {
		key := it.Next()
		move, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		level, err := binary.ReadUvarint(r)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if move > uint8(board.Down) {
			return 0, ErrCorrupt
		}
		recordDigest(digest, scratch[:], key, move, level)
		prob := math.Min(1, float64(level)*h.step)
		t.Store(key, tinymove.New(board.Move(move), prob))
		read++
	}
	var sum [8]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if binary.LittleEndian.Uint64(sum[:]) != digest.Sum64() {
		return 0, ErrChecksum
	}
	log.Debug().Str("path", path).Int("records", read).
		Float64("step", h.step).Str("codec", h.codec.String()).
		Msg("snapshot-loaded")
	return read, nil
}
