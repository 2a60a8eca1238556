//Package featio persists featurization artifacts to disk as compressed
//text files, one file per augmentation. The compression format is chosen
//from the file name suffix: ".zst" selects zstd, ".gz" selects gzip and
//".fl" selects raw DEFLATE. Anything else gets zstd.
package featio

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	feat "github.com/gmolnar/gridfeat"
)

//Writers

//DirWriter writes each augmentation's artifact to its own file under a
//directory. It implements feat.ArtifactWriter.
type DirWriter struct {
	dir    string
	suffix string
	level  int
}

//NewDirWriter returns a DirWriter that stores artifacts under dir, which
//is created if needed. The optional suffix selects the compression format
//and defaults to ".zst".
func NewDirWriter(dir string, suffix ...string) (*DirWriter, error) {
	suf := ".zst"
	if len(suffix) > 0 {
		suf = suffix[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, Error{err.Error(), dir, []string{"NewDirWriter"}, true}
	}
	return &DirWriter{dir: dir, suffix: suf, level: flate.BestCompression}, nil
}

//WriteArtifact writes one artifact to a file named after its augmentation
//key, aug_R_F plus the configured suffix.
func (D *DirWriter) WriteArtifact(key feat.AugIndex, a *feat.Artifact) error {
	name := filepath.Join(D.dir, fmt.Sprintf("aug_%d_%d%s", key.Rotation, key.Reflection, D.suffix))
	err := Write(name, a, D.level)
	if err != nil {
		return errDecorate(err, "WriteArtifact")
	}
	return nil
}

func newCompressor(name string, f io.Writer, level int) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".gz"):
		return gzip.NewWriterLevel(f, level)
	case strings.HasSuffix(strings.ToLower(name), ".fl"):
		return flate.NewWriter(f, level)
	default:
		return zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
}

func newDecompressor(name string, f io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".gz"):
		return gzip.NewReader(f)
	case strings.HasSuffix(strings.ToLower(name), ".fl"):
		return flate.NewReader(f), nil
	default:
		r, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		return &zstdql{r.Close, r}, nil
	}
}

//*zstd.Decoder's Close returns nothing, so it does not satisfy
//io.ReadCloser on its own.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (s *zstdql) Close() error {
	s.closeql()
	return nil
}

//Write stores one artifact in the named file. The format is one header
//line, "** vector N" or "** tensor G C", followed by one value per line.
func Write(name string, a *feat.Artifact, level int) error {
	if a == nil || (a.Vector == nil && a.Tensor == nil) {
		return Error{"nil or empty artifact", name, []string{"Write"}, true}
	}
	f, err := os.Create(name)
	if err != nil {
		return Error{err.Error(), name, []string{"Write"}, true}
	}
	defer f.Close()
	h, err := newCompressor(name, f, level)
	if err != nil {
		return Error{err.Error(), name, []string{"Write"}, true}
	}
	var data []float64
	if a.Vector != nil {
		data = a.Vector
		fmt.Fprintf(h, "** vector %d\n", len(data))
	} else {
		data = a.Tensor.Raw()
		fmt.Fprintf(h, "** tensor %d %d\n", a.Tensor.G(), a.Tensor.Channels())
	}
	for _, v := range data {
		fmt.Fprintf(h, "%g\n", v)
	}
	if err := h.Close(); err != nil {
		return Error{err.Error(), name, []string{"Write"}, true}
	}
	return nil
}

//Read loads one artifact from the named file.
func Read(name string) (*feat.Artifact, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"Read"}, true}
	}
	defer f.Close()
	h, err := newDecompressor(name, bufio.NewReader(f))
	if err != nil {
		return nil, Error{err.Error(), name, []string{"Read"}, true}
	}
	defer h.Close()
	buf := bufio.NewReader(h)
	header, err := buf.ReadString('\n')
	if err != nil {
		return nil, Error{"can't read header: " + err.Error(), name, []string{"Read"}, true}
	}
	fields := strings.Fields(strings.TrimSpace(header))
	if len(fields) < 3 || fields[0] != "**" {
		return nil, Error{WrongFormat + ": " + header, name, []string{"Read"}, true}
	}
	readValues := func(n int) ([]float64, error) {
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			line, err := buf.ReadString('\n')
			if err != nil {
				return nil, Error{fmt.Sprintf("can't read value %d: %s", i, err.Error()), name, []string{"Read"}, true}
			}
			data[i], err = strconv.ParseFloat(strings.TrimSpace(line), 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("can't parse value %d: %s", i, err.Error()), name, []string{"Read"}, true}
			}
		}
		return data, nil
	}
	switch fields[1] {
	case "vector":
		n, err := strconv.Atoi(fields[2])
		if err != nil || n < 0 {
			return nil, Error{WrongFormat + ": bad vector length " + fields[2], name, []string{"Read"}, true}
		}
		data, err := readValues(n)
		if err != nil {
			return nil, errDecorate(err, "Read")
		}
		return &feat.Artifact{Vector: data}, nil
	case "tensor":
		if len(fields) < 4 {
			return nil, Error{WrongFormat + ": truncated tensor header", name, []string{"Read"}, true}
		}
		g, err := strconv.Atoi(fields[2])
		if err != nil || g <= 0 {
			return nil, Error{WrongFormat + ": bad tensor size " + fields[2], name, []string{"Read"}, true}
		}
		channels, err := strconv.Atoi(fields[3])
		if err != nil || channels <= 0 {
			return nil, Error{WrongFormat + ": bad channel count " + fields[3], name, []string{"Read"}, true}
		}
		data, err := readValues(g * g * g * channels)
		if err != nil {
			return nil, errDecorate(err, "Read")
		}
		T := feat.NewTensor(g, channels)
		copy(T.Raw(), data)
		return &feat.Artifact{Tensor: T}, nil
	}
	return nil, Error{WrongFormat + ": unknown artifact kind " + fields[1], name, []string{"Read"}, true}
}

//Errors

//errDecorate asserts that err implements feat.Error and decorates it with
//the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(feat.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the error type for artifact files. It fullfills feat.Error.
type Error struct {
	message  string
	filename string //the artifact file with problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("featio file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the artifact file associated to the error
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	WrongFormat  = "Wrong format in the artifact file"
	UnableToOpen = "Unable to open file"
)
