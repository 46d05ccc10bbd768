package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StorageService stores opaque blobs (contract signature captures) and hands
// back permanent references.
type StorageService interface {
	// UploadSignature stores a signature blob and returns its public ID,
	// which contracts carry verbatim as signatureData.
	UploadSignature(ctx context.Context, file multipart.File) (string, error)
	// GetDownloadURL constructs a viewable URL for a stored blob.
	GetDownloadURL(ctx context.Context, publicID string) (string, error)
}

// CloudinaryStorageService implements StorageService on Cloudinary.
type CloudinaryStorageService struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewStorageService creates a Cloudinary-backed storage service.
func NewStorageService(cld *cloudinary.Cloudinary, cloudName string) *CloudinaryStorageService {
	return &CloudinaryStorageService{
		cld:       cld,
		cloudName: cloudName,
	}
}

// UploadSignature uploads the blob into the signatures folder.
func (s *CloudinaryStorageService) UploadSignature(ctx context.Context, file multipart.File) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: "contract-signatures",
	})
	if err != nil {
		return "", fmt.Errorf("storage: failed to upload signature: %w", err)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("storage: no public ID returned")
	}
	return result.PublicID, nil
}

// GetDownloadURL constructs a public URL for a stored signature.
func (s *CloudinaryStorageService) GetDownloadURL(ctx context.Context, publicID string) (string, error) {
	asset, err := s.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("storage: failed to resolve asset: %w", err)
	}
	url, err := asset.String()
	if err != nil {
		return "", fmt.Errorf("storage: failed to build URL: %w", err)
	}
	return url, nil
}
