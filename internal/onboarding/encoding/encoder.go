// Package encoding turns attachment handles into transport-safe data URLs.
package encoding

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync"

	"golang.org/x/crypto/blake2b"

	"kycportal/internal/onboarding/models"
)

const (
	// DefaultMaxBytes caps a single attachment at 10 MiB.
	DefaultMaxBytes int64 = 10 << 20
	defaultCacheSize      = 512
)

var (
	ErrTooLarge  = errors.New("attachment exceeds the maximum size")
	ErrEmptyFile = errors.New("attachment is empty")
	ErrNoFile    = errors.New("slot has no file")
)

// EncodingError reports a failed encoding for one slot. The slot keeps its
// previous state.
type EncodingError struct {
	Slot  models.Slot
	Cause error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Slot, e.Cause)
}

func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// Result is an encoded attachment together with the content fingerprint it
// was produced from.
type Result struct {
	FileID      string
	Encoded     string
	Fingerprint string
}

// Encoder produces data URLs and memoizes them. A handle that was encoded
// once is never read again; a different handle with identical content reuses
// the earlier base64 body under its own media type.
type Encoder struct {
	maxBytes  int64
	cacheSize int
	logger    *slog.Logger

	mu        sync.Mutex
	byHandle  map[string]Result
	// byContent maps a content fingerprint to its base64 body.
	byContent map[string]string
}

type Option func(*Encoder)

func WithMaxBytes(n int64) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

func WithCacheSize(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.cacheSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		e.logger = logger
	}
}

func New(opts ...Option) *Encoder {
	e := &Encoder{
		maxBytes:  DefaultMaxBytes,
		cacheSize: defaultCacheSize,
		byHandle:  make(map[string]Result),
		byContent: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxBytes is the configured size limit.
func (e *Encoder) MaxBytes() int64 {
	return e.maxBytes
}

// Encode reads f and returns its data URL. Any failure is an *EncodingError.
func (e *Encoder) Encode(ctx context.Context, slot models.Slot, f models.File) (Result, error) {
	if f == nil {
		return Result{}, &EncodingError{Slot: slot, Cause: ErrNoFile}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, &EncodingError{Slot: slot, Cause: err}
	}
	if cached, ok := e.cachedHandle(f.ID()); ok {
		return cached, nil
	}
	if f.Size() > e.maxBytes {
		return Result{}, &EncodingError{Slot: slot, Cause: ErrTooLarge}
	}

	data, err := e.read(f)
	if err != nil {
		return Result{}, &EncodingError{Slot: slot, Cause: err}
	}

	sum := blake2b.Sum256(data)
	fingerprint := hex.EncodeToString(sum[:])

	e.mu.Lock()
	defer e.mu.Unlock()
	body, ok := e.byContent[fingerprint]
	if !ok {
		body = base64.StdEncoding.EncodeToString(data)
	}
	res := Result{
		FileID:      f.ID(),
		Encoded:     "data:" + mediaType(f.ContentType(), data) + ";base64," + body,
		Fingerprint: fingerprint,
	}
	e.remember(res, body)

	if e.logger != nil {
		e.logger.DebugContext(ctx, "attachment encoded",
			"slot", slot,
			"bytes", len(data),
			"reused", ok,
		)
	}
	return res, nil
}

// EncodeSlot encodes the handle currently in slot and records the result on
// the returned draft. A draft whose slot already carries the encoded form is
// returned unchanged.
func (e *Encoder) EncodeSlot(ctx context.Context, d models.Draft, slot models.Slot) (models.Draft, error) {
	att, ok := d.Attachments[slot]
	if !ok || att.File == nil {
		return d, &EncodingError{Slot: slot, Cause: ErrNoFile}
	}
	if att.IsEncoded() {
		return d, nil
	}
	res, err := e.Encode(ctx, slot, att.File)
	if err != nil {
		return d, err
	}
	return models.SetEncoded(d, slot, res.FileID, res.Encoded, res.Fingerprint)
}

// Forget drops the memoized result of a handle, used when a slot is cleared.
func (e *Encoder) Forget(fileID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if res, ok := e.byHandle[fileID]; ok {
		delete(e.byHandle, fileID)
		delete(e.byContent, res.Fingerprint)
	}
}

func (e *Encoder) cachedHandle(fileID string) (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, ok := e.byHandle[fileID]
	return res, ok
}

// remember stores res, evicting arbitrary entries when the cache is full.
// Callers hold e.mu.
func (e *Encoder) remember(res Result, body string) {
	for len(e.byHandle) >= e.cacheSize {
		for id, old := range e.byHandle {
			delete(e.byHandle, id)
			delete(e.byContent, old.Fingerprint)
			break
		}
	}
	e.byHandle[res.FileID] = res
	e.byContent[res.Fingerprint] = body
}

func (e *Encoder) read(f models.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}

// mediaType keeps the declared type without parameters and sniffs the content
// when the declared type is missing or malformed.
func mediaType(declared string, data []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}
