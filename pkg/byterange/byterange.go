// Package byterange extracts a signed PDF's /ByteRange and computes the
// document digest over the bytes it covers.
package byterange

import (
	"bytes"
	"crypto/sha256"
	"io"

	"github.com/digitorus/pdf"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

// Range is a parsed four-integer /ByteRange [off1 len1 off2 len2].
type Range struct {
	Off1 int64
	Len1 int64
	Off2 int64
	Len2 int64
}

// Result is the outcome of extracting and digesting a PDF's signed range.
type Result struct {
	Range      Range
	DocHash    [32]byte
	ContentHex string // the /Contents hex string (the CMS SignedData blob)
}

// Extract locates the first signature dictionary's /ByteRange and /Contents
// in pdfBytes, validates the range against the file bounds, and computes the
// SHA-256 document digest over PDF[off1:off1+len1] || PDF[off2:off2+len2].
func Extract(pdfBytes []byte) (*Result, error) {
	size := int64(len(pdfBytes))
	reader := bytes.NewReader(pdfBytes)

	doc, err := pdf.NewReader(reader, size)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedPDF, "open PDF")
	}

	sigDict, found := findSignatureDict(doc.Trailer().Key("Root"), 0)
	if !found {
		return nil, apperrors.New(apperrors.CodeMalformedPDF, "no /ByteRange found in first signature dictionary")
	}

	byteRangeValue := sigDict.Key("ByteRange")
	if byteRangeValue.IsNull() || byteRangeValue.Kind() != pdf.Array || byteRangeValue.Len() != 4 {
		return nil, apperrors.New(apperrors.CodeMalformedPDF, "/ByteRange is not a four-element array")
	}

	var quad [4]int64
	for i := 0; i < 4; i++ {
		v := byteRangeValue.Index(i)
		if v.Kind() != pdf.Integer {
			return nil, apperrors.New(apperrors.CodeMalformedPDF, "/ByteRange element is not an integer")
		}
		quad[i] = v.Int64()
	}

	rng := Range{Off1: quad[0], Len1: quad[1], Off2: quad[2], Len2: quad[3]}
	if err := validateRange(rng, size); err != nil {
		return nil, err
	}

	digest, err := digestRange(pdfBytes, rng)
	if err != nil {
		return nil, err
	}

	contents := sigDict.Key("Contents")
	var contentHex string
	if contents.Kind() == pdf.String {
		contentHex = contents.RawString()
	}

	return &Result{Range: rng, DocHash: digest, ContentHex: contentHex}, nil
}

// validateRange enforces non-overlap and in-bounds endpoints.
func validateRange(r Range, fileSize int64) error {
	if r.Off1 < 0 || r.Len1 < 0 || r.Off2 < 0 || r.Len2 < 0 {
		return apperrors.New(apperrors.CodeRangeOutOfBounds, "negative ByteRange component")
	}
	end1 := r.Off1 + r.Len1
	end2 := r.Off2 + r.Len2
	if end1 > fileSize || end2 > fileSize {
		return apperrors.Newf(apperrors.CodeRangeOutOfBounds, "ByteRange extends past file size %d", fileSize)
	}
	// Ranges must not overlap: the first must end at or before the second begins,
	// or vice versa.
	if !(end1 <= r.Off2 || end2 <= r.Off1) {
		return apperrors.New(apperrors.CodeRangeOutOfBounds, "ByteRange segments overlap")
	}
	return nil
}

// digestRange reads the two covered segments via io.SectionReader and
// io.MultiReader, mirroring the way signed-PDF verifiers stitch the signed
// byte ranges into one stream before hashing.
func digestRange(pdfBytes []byte, r Range) ([32]byte, error) {
	reader := bytes.NewReader(pdfBytes)
	parts := io.MultiReader(
		io.NewSectionReader(reader, r.Off1, r.Len1),
		io.NewSectionReader(reader, r.Off2, r.Len2),
	)

	h := sha256.New()
	if _, err := io.Copy(h, parts); err != nil {
		return [32]byte{}, apperrors.Wrap(err, apperrors.CodeMalformedPDF, "read signed byte ranges")
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest, nil
}

// findSignatureDict walks the AcroForm field tree (and DocMDP permission
// dict as a fallback) looking for the first dictionary carrying a
// /ByteRange entry.
func findSignatureDict(root pdf.Value, depth int) (pdf.Value, bool) {
	if depth > 16 || root.IsNull() {
		return pdf.Value{}, false
	}

	if !root.Key("ByteRange").IsNull() {
		return root, true
	}

	if perms := root.Key("Perms").Key("DocMDP"); !perms.Key("ByteRange").IsNull() {
		return perms, true
	}

	fields := root.Key("AcroForm").Key("Fields")
	if fields.Kind() == pdf.Array {
		for i := 0; i < fields.Len(); i++ {
			if dict, ok := findSignatureDict(fields.Index(i).Key("V"), depth+1); ok {
				return dict, true
			}
			if dict, ok := findSignatureDict(fields.Index(i), depth+1); ok {
				return dict, true
			}
		}
	}

	return pdf.Value{}, false
}
