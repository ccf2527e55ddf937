package models

import (
	"bytes"
	"io"

	"github.com/google/uuid"
)

// Slot names an attachment position on a stage.
type Slot string

const (
	SlotNationalID              Slot = "national_id"
	SlotSelfie                  Slot = "selfie"
	SlotProofOfAddress          Slot = "proof_of_address"
	SlotProofOfIncome           Slot = "proof_of_income"
	SlotRegistrationCertificate Slot = "registration_certificate"
	SlotBoardAuthorization      Slot = "board_authorization"
	SlotLendingCriteria         Slot = "lending_criteria"
)

func (s Slot) IsValid() bool {
	switch s {
	case SlotNationalID, SlotSelfie, SlotProofOfAddress, SlotProofOfIncome,
		SlotRegistrationCertificate, SlotBoardAuthorization, SlotLendingCriteria:
		return true
	}
	return false
}

// File is a read-only handle to uploaded content. Open may be called more
// than once; each call returns a fresh reader.
type File interface {
	ID() string
	Name() string
	ContentType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// BlobFile is an in-memory File.
type BlobFile struct {
	id          string
	name        string
	contentType string
	data        []byte
}

// NewBlobFile wraps data in a handle with a fresh id.
func NewBlobFile(name, contentType string, data []byte) *BlobFile {
	return &BlobFile{
		id:          uuid.NewString(),
		name:        name,
		contentType: contentType,
		data:        data,
	}
}

func (f *BlobFile) ID() string          { return f.id }
func (f *BlobFile) Name() string        { return f.name }
func (f *BlobFile) ContentType() string { return f.contentType }
func (f *BlobFile) Size() int64         { return int64(len(f.data)) }

func (f *BlobFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// Attachment moves empty -> selected -> encoded. Encoded always belongs to the
// current File; selecting another file clears it.
type Attachment struct {
	Slot        Slot
	File        File
	Encoded     string
	Fingerprint string
}

func (a Attachment) IsEmpty() bool   { return a.File == nil && a.Encoded == "" }
func (a Attachment) IsEncoded() bool { return a.Encoded != "" }
