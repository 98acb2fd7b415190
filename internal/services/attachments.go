package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"strings"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
	"judicial-archive/internal/storage/r2"

	"go.uber.org/zap"
)

const (
	localScheme  = "local://"
	remoteScheme = "r2://"
)

// ObjectStore presigns direct transfers to an object bucket.
type ObjectStore interface {
	PresignPutObject(ctx context.Context, key, contentType string) (r2.PresignedURL, error)
	PresignGetObject(ctx context.Context, key, responseContentType, contentDisposition string) (r2.PresignedURL, error)
	DeleteObject(ctx context.Context, key string) error
}

// AttachmentService stores paper attachments on local disk or, when
// configured, in an object bucket through presigned URLs.
type AttachmentService struct {
	archive  *ArchiveService
	local    *StorageService
	remote   ObjectStore
	maxBytes int64
	log      *zap.Logger
}

// NewAttachmentService wires attachment storage. remote may be nil.
func NewAttachmentService(archive *ArchiveService, local *StorageService, remote ObjectStore, maxBytes int64, log *zap.Logger) *AttachmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttachmentService{archive: archive, local: local, remote: remote, maxBytes: maxBytes, log: log}
}

func (s *AttachmentService) RemoteEnabled() bool {
	return s.remote != nil
}

func (s *AttachmentService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores r as the paper's attachment and records its type and size.
func (s *AttachmentService) Upload(ctx context.Context, actor repositories.Actor, paperID, filename, contentType string, r io.Reader) (*models.Paper, error) {
	paper, err := s.archive.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if s.local == nil {
		return nil, ErrAttachmentsDisabled
	}

	key := r2.ObjectKey(paperID, filename)
	n, err := s.local.Save(key, r, s.maxBytes)
	if errors.Is(err, ErrTooLarge) {
		return nil, invalid("attachment larger than %d bytes", s.maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("save attachment for paper %s: %w", paperID, err)
	}

	url := localScheme + key
	fileType := detectType(filename, contentType)
	updated, err := s.archive.patchPaper(ctx, actor, paperID, PaperUpdate{
		AttachmentURL: &url,
		FileType:      &fileType,
		FileSize:      &n,
	})
	if err != nil {
		return nil, err
	}
	s.discard(ctx, paperID, paper.AttachmentURL, url)
	return updated, nil
}

// PresignUpload returns a URL the client PUTs the file to directly; the
// paper is updated to point at the object.
func (s *AttachmentService) PresignUpload(ctx context.Context, actor repositories.Actor, paperID, filename, contentType string, size int64) (r2.PresignedURL, *models.Paper, error) {
	if s.remote == nil {
		return r2.PresignedURL{}, nil, ErrAttachmentsDisabled
	}
	if size < 0 || (s.maxBytes > 0 && size > s.maxBytes) {
		return r2.PresignedURL{}, nil, invalid("attachment size %d out of range", size)
	}
	paper, err := s.archive.GetPaper(ctx, paperID)
	if err != nil {
		return r2.PresignedURL{}, nil, err
	}

	key := r2.ObjectKey(paperID, filename)
	fileType := detectType(filename, contentType)
	presigned, err := s.remote.PresignPutObject(ctx, key, fileType)
	if err != nil {
		return r2.PresignedURL{}, nil, fmt.Errorf("presign upload: %w", err)
	}

	url := remoteScheme + key
	updated, err := s.archive.patchPaper(ctx, actor, paperID, PaperUpdate{
		AttachmentURL: &url,
		FileType:      &fileType,
		FileSize:      &size,
	})
	if err != nil {
		return r2.PresignedURL{}, nil, err
	}
	s.discard(ctx, paperID, paper.AttachmentURL, url)
	return presigned, updated, nil
}

// Attachment is where a paper's file can be read: either an open local
// file or a URL to redirect to.
type Attachment struct {
	File        *os.File
	RedirectURL string
	Name        string
	ContentType string
}

func (s *AttachmentService) Open(ctx context.Context, paperID string) (*Attachment, error) {
	paper, err := s.archive.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if paper.AttachmentURL == nil || *paper.AttachmentURL == "" {
		return nil, fmt.Errorf("paper %s attachment: %w", paperID, repositories.ErrNotFound)
	}
	ref := *paper.AttachmentURL
	att := &Attachment{Name: path.Base(ref), ContentType: "application/octet-stream"}
	if paper.FileType != nil && *paper.FileType != "" {
		att.ContentType = *paper.FileType
	}

	key, owned := ownedKey(paperID, ref)
	if managedScheme(ref) && !owned {
		return nil, fmt.Errorf("paper %s attachment outside its key space: %w", paperID, repositories.ErrNotFound)
	}

	switch {
	case strings.HasPrefix(ref, localScheme):
		if s.local == nil {
			return nil, ErrAttachmentsDisabled
		}
		f, err := s.local.Open(key)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("paper %s attachment file: %w", paperID, repositories.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		att.File = f
	case strings.HasPrefix(ref, remoteScheme):
		if s.remote == nil {
			return nil, ErrAttachmentsDisabled
		}
		disposition := mime.FormatMediaType("attachment", map[string]string{"filename": att.Name})
		presigned, err := s.remote.PresignGetObject(ctx, key, att.ContentType, disposition)
		if err != nil {
			return nil, fmt.Errorf("presign download: %w", err)
		}
		att.RedirectURL = presigned.URL
	default:
		att.RedirectURL = ref
	}
	return att, nil
}

// DeletePaper removes a paper and its stored attachment.
func (s *AttachmentService) DeletePaper(ctx context.Context, actor repositories.Actor, paperID string) error {
	paper, err := s.archive.GetPaper(ctx, paperID)
	if err != nil {
		return err
	}
	if err := s.archive.DeletePaper(ctx, actor, paperID); err != nil {
		return err
	}
	s.discard(ctx, paperID, paper.AttachmentURL, "")
	return nil
}

// DeleteDocument removes a document with its papers and their stored
// attachments.
func (s *AttachmentService) DeleteDocument(ctx context.Context, actor repositories.Actor, documentID string) error {
	papers, err := s.archive.ListPapers(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.archive.DeleteDocument(ctx, actor, documentID); err != nil {
		return err
	}
	for _, p := range papers {
		s.discard(ctx, p.ID, p.AttachmentURL, "")
	}
	return nil
}

// discard removes a replaced attachment, logging failures. Only keys under
// the paper's own prefix are touched.
func (s *AttachmentService) discard(ctx context.Context, paperID string, previous *string, current string) {
	if previous == nil || *previous == current {
		return
	}
	ref := *previous
	key, owned := ownedKey(paperID, ref)
	if !owned {
		return
	}
	var err error
	switch {
	case strings.HasPrefix(ref, localScheme) && s.local != nil:
		err = s.local.Remove(key)
	case strings.HasPrefix(ref, remoteScheme) && s.remote != nil:
		err = s.remote.DeleteObject(ctx, key)
	}
	if err != nil {
		s.log.Warn("remove attachment failed", zap.String("paper_id", paperID), zap.String("attachment", ref), zap.Error(err))
	}
}

func managedScheme(ref string) bool {
	return strings.HasPrefix(ref, localScheme) || strings.HasPrefix(ref, remoteScheme)
}

// ownedKey strips the storage scheme from ref and reports whether the key
// lies under papers/<paperID>/.
func ownedKey(paperID, ref string) (string, bool) {
	var key string
	switch {
	case strings.HasPrefix(ref, localScheme):
		key = strings.TrimPrefix(ref, localScheme)
	case strings.HasPrefix(ref, remoteScheme):
		key = strings.TrimPrefix(ref, remoteScheme)
	default:
		return "", false
	}
	return key, paperID != "" && path.Clean(key) == key && strings.HasPrefix(key, "papers/"+paperID+"/")
}

func detectType(filename, contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if byExt := mime.TypeByExtension(path.Ext(filename)); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	return "application/octet-stream"
}
