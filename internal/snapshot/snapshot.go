// Package snapshot dumps chunk grids to zstd-compressed files for offline
// inspection and compares them by digest.
package snapshot

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"voxelstream/internal/registry"
	"voxelstream/internal/world"
)

// Version is the current dump format.
const Version = 1

// ErrFormat is returned for dumps that do not match the chunk layout.
var ErrFormat = errors.New("snapshot: bad format")

// Header is the JSON line that precedes the block payload.
type Header struct {
	Version int    `json:"version"`
	CX      int    `json:"cx"`
	CZ      int    `json:"cz"`
	Size    int    `json:"size"`
	MinY    int    `json:"min_y"`
	Height  int    `json:"height"`
	Seed    int64  `json:"seed"`
	Digest  string `json:"digest"`
}

// Digest returns the hex SHA-256 of the chunk's block grid.
func Digest(c *world.Chunk) string {
	sum := sha256.Sum256(gridBytes(c.Blocks()))
	return hex.EncodeToString(sum[:])
}

func gridBytes(blocks []registry.BlockID) []byte {
	b := make([]byte, len(blocks))
	for i, id := range blocks {
		b[i] = byte(id)
	}
	return b
}

// Write encodes c to w.
func Write(w io.Writer, c *world.Chunk, seed int64) error {
	payload := gridBytes(c.Blocks())
	sum := sha256.Sum256(payload)
	hb, err := json.Marshal(Header{
		Version: Version,
		CX:      c.Coord.X,
		CZ:      c.Coord.Z,
		Size:    world.ChunkSize,
		MinY:    world.MinY,
		Height:  world.ChunkHeight,
		Seed:    seed,
		Digest:  hex.EncodeToString(sum[:]),
	})
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(payload); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read decodes a chunk written by Write and checks its digest.
func Read(r io.Reader) (*world.Chunk, Header, error) {
	var h Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, h, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, h, fmt.Errorf("%w: header: %w", ErrFormat, err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, h, fmt.Errorf("%w: header: %w", ErrFormat, err)
	}
	if h.Version != Version || h.Size != world.ChunkSize || h.MinY != world.MinY || h.Height != world.ChunkHeight {
		return nil, h, fmt.Errorf("%w: layout v%d %dx%d from y=%d", ErrFormat, h.Version, h.Size, h.Height, h.MinY)
	}

	payload := make([]byte, world.ChunkVolume)
	if _, err := io.ReadFull(br, payload); err != nil {
		return nil, h, fmt.Errorf("%w: payload: %w", ErrFormat, err)
	}
	sum := sha256.Sum256(payload)
	if hex.EncodeToString(sum[:]) != h.Digest {
		return nil, h, fmt.Errorf("%w: digest mismatch", ErrFormat)
	}

	c := world.NewChunk(world.ChunkCoord{X: h.CX, Z: h.CZ})
	blocks := c.Blocks()
	for i, b := range payload {
		blocks[i] = registry.BlockID(b)
	}
	return c, h, nil
}

// FileName returns the conventional dump name for coord.
func FileName(coord world.ChunkCoord) string {
	return fmt.Sprintf("chunk_%d_%d.zst", coord.X, coord.Z)
}

// WriteFile dumps c into dir, creating it when needed, and returns the path.
func WriteFile(dir string, c *world.Chunk, seed int64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(c.Coord))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if err := Write(f, c, seed); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// ReadFile loads a dump written by WriteFile.
func ReadFile(path string) (*world.Chunk, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer f.Close()
	return Read(f)
}
