package extract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info describes a PDF without extracting its text.
type Info struct {
	Path      string
	Size      int64
	PageCount int
	Encrypted bool
	Version   string

	// Document information dictionary, where present.
	Title       string
	Author      string
	Subject     string
	Producer    string
	CreatedDate string
}

// Inspect reads the PDF structure with relaxed validation and reports page
// count, encryption, and header version. The read position of rs is not
// restored.
func Inspect(rs io.ReadSeeker) (*Info, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("ensure page count: %w", err)
	}

	return &Info{
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
		Version:   ctx.HeaderVersion.String(),
	}, nil
}

// InspectFile combines structural inspection with the document information
// dictionary of the PDF at path. Metadata extraction is best-effort;
// structural failure is not.
func InspectFile(path string) (*Info, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &Error{Kind: KindNotFound, Path: path, Err: err}
	}
	if err != nil {
		return nil, &Error{Kind: KindUnreadable, Path: path, Err: err}
	}
	if fileInfo.Size() == 0 {
		return nil, &Error{Kind: KindEmptyFile, Path: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindUnreadable, Path: path, Err: err}
	}
	defer f.Close()

	info, err := Inspect(f)
	if err != nil {
		return nil, &Error{Kind: KindCorrupt, Path: path, Err: err}
	}
	info.Path = path
	info.Size = fileInfo.Size()

	if reader, err := pdf.NewReader(f, fileInfo.Size()); err == nil {
		readMetadata(reader, info)
	}

	return info, nil
}

// readMetadata fills info from the trailer's Info dictionary. The PDF
// library panics on some malformed values, so failures leave the fields
// blank instead of propagating.
func readMetadata(reader *pdf.Reader, info *Info) {
	defer func() {
		recover() //nolint:errcheck // metadata is optional
	}()

	trailer := reader.Trailer()
	if trailer.IsNull() {
		return
	}
	dict := trailer.Key("Info")
	if dict.IsNull() {
		return
	}

	if v := dict.Key("Title"); !v.IsNull() {
		info.Title = strings.TrimSpace(v.Text())
	}
	if v := dict.Key("Author"); !v.IsNull() {
		info.Author = strings.TrimSpace(v.Text())
	}
	if v := dict.Key("Subject"); !v.IsNull() {
		info.Subject = strings.TrimSpace(v.Text())
	}
	if v := dict.Key("Producer"); !v.IsNull() {
		info.Producer = strings.TrimSpace(v.Text())
	}
	if v := dict.Key("CreationDate"); !v.IsNull() {
		info.CreatedDate = strings.TrimSpace(v.Text())
	}
}
