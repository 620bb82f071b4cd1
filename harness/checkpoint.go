package harness

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Checkpoint is the binary snapshot of a run, written on exit and read back
// by -resume. Layout:
//
//	MAGIC    4B   "QDFR"
//	VERSION  u16  0x0001
//	PARAMS   32B  SHA-256 of the parameter line
//	MAXITER  u32
//	TESTS    u64
//	SUCCESS  u64
//	NITER    u32  histogram length
//	ITER     NITER x u64
const (
	checkpointMagic     = "QDFR"
	checkpointVersion   = 1
	checkpointHeaderLen = 4 + 2 + 32 + 4 + 8 + 8 + 4
)

var (
	ErrBadMagic = errors.New("checkpoint: bad magic")
	ErrVersion  = errors.New("checkpoint: unsupported version")
	ErrShort    = errors.New("checkpoint: short data")
	ErrParams   = errors.New("checkpoint: parameters differ")
)

type Checkpoint struct {
	Params [32]byte
	Stats  Stats
}

// ParamsDigest is the SHA-256 of a parameter line.
func ParamsDigest(line string) [32]byte { return sha256.Sum256([]byte(line)) }

// NewCheckpoint snapshots s for the run described by line.
func NewCheckpoint(line string, s Stats) Checkpoint {
	return Checkpoint{Params: ParamsDigest(line), Stats: s.Clone()}
}

func (c *Checkpoint) MarshalBinary() ([]byte, error) {
	s := c.Stats
	b := make([]byte, checkpointHeaderLen+8*len(s.Iter))
	copy(b[0:4], checkpointMagic)
	binary.LittleEndian.PutUint16(b[4:6], checkpointVersion)
	copy(b[6:38], c.Params[:])
	binary.LittleEndian.PutUint32(b[38:42], uint32(s.MaxIter))
	binary.LittleEndian.PutUint64(b[42:50], uint64(s.Tests))
	binary.LittleEndian.PutUint64(b[50:58], uint64(s.Successes))
	binary.LittleEndian.PutUint32(b[58:62], uint32(len(s.Iter)))
	for i, v := range s.Iter {
		binary.LittleEndian.PutUint64(b[checkpointHeaderLen+8*i:], uint64(v))
	}
	return b, nil
}

func (c *Checkpoint) UnmarshalBinary(b []byte) error {
	if len(b) < checkpointHeaderLen {
		return ErrShort
	}
	if string(b[0:4]) != checkpointMagic {
		return ErrBadMagic
	}
	if binary.LittleEndian.Uint16(b[4:6]) != checkpointVersion {
		return ErrVersion
	}
	copy(c.Params[:], b[6:38])
	s := Stats{
		MaxIter:   int(binary.LittleEndian.Uint32(b[38:42])),
		Tests:     int64(binary.LittleEndian.Uint64(b[42:50])),
		Successes: int64(binary.LittleEndian.Uint64(b[50:58])),
	}
	n := int(binary.LittleEndian.Uint32(b[58:62]))
	if len(b) < checkpointHeaderLen+8*n {
		return ErrShort
	}
	s.Iter = make([]int64, n)
	for i := range s.Iter {
		s.Iter[i] = int64(binary.LittleEndian.Uint64(b[checkpointHeaderLen+8*i:]))
	}
	c.Stats = s
	return nil
}

// WriteCheckpoint writes c to path through a temporary file.
func WriteCheckpoint(path string, c Checkpoint) error {
	b, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	tmp := path + ".part"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadCheckpoint loads path and checks it was written for line.
func ReadCheckpoint(path, line string) (Stats, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, err
	}
	var c Checkpoint
	if err := c.UnmarshalBinary(b); err != nil {
		return Stats{}, fmt.Errorf("%s: %w", path, err)
	}
	if c.Params != ParamsDigest(line) {
		return Stats{}, fmt.Errorf("%s: %w", path, ErrParams)
	}
	return c.Stats, nil
}
