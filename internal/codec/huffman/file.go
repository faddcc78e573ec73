package huffman

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DefaultExtension = ".huff"

// FileResult describes one file-level compress or decompress run.
type FileResult struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	InputBytes  int    `json:"input_bytes"`
	OutputBytes int    `json:"output_bytes"`
}

// WriteFile atomically writes data to path. It writes to a .tmp file first,
// syncs and closes it, and renames on success. On failure the temp file is
// removed and path is left untouched.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if err := writeAndClose(f, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s: %w", tmpPath, err)
	}
	return nil
}

// writeAndClose closes f exactly once, returning the first error.
func writeAndClose(f *os.File, data []byte) error {
	_, err := f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteContainer serialises c and writes it atomically to path.
func WriteContainer(path string, c *Container) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshaling container: %w", err)
	}
	return WriteFile(path, data)
}

// ReadContainer reads and parses a container file.
func ReadContainer(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading container %s: %w", path, err)
	}
	c, err := UnmarshalContainer(data)
	if err != nil {
		return nil, fmt.Errorf("parsing container %s: %w", path, err)
	}
	return c, nil
}

// CompressFile compresses in and writes the container to out.
func CompressFile(in, out string) (*FileResult, *Container, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", in, err)
	}
	c, err := Encode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("compressing %s: %w", in, err)
	}
	if err := WriteContainer(out, c); err != nil {
		return nil, nil, err
	}
	return &FileResult{
		Input:       in,
		Output:      out,
		InputBytes:  len(data),
		OutputBytes: c.Size(),
	}, c, nil
}

// DecompressFile decodes the container at in and writes the bytes to out.
func DecompressFile(in, out string) (*FileResult, error) {
	c, err := ReadContainer(in)
	if err != nil {
		return nil, err
	}
	data, err := Decode(c)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", in, err)
	}
	if err := WriteFile(out, data); err != nil {
		return nil, err
	}
	return &FileResult{
		Input:       in,
		Output:      out,
		InputBytes:  c.Size(),
		OutputBytes: len(data),
	}, nil
}

// CompressedPath names the container for in: the input's base name with its
// extension replaced by ext, placed in dir (or next to in when dir is empty).
func CompressedPath(in, dir, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return filepath.Join(outputDir(in, dir), stem(in)+ext)
}

// DecompressedPath names the restored file for in as <stem>_decomp.txt.
func DecompressedPath(in, dir string) string {
	return filepath.Join(outputDir(in, dir), stem(in)+"_decomp.txt")
}

func outputDir(in, dir string) string {
	if dir != "" {
		return dir
	}
	return filepath.Dir(in)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
