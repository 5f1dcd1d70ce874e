package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Cloudinary stores blobs in a Cloudinary account. Receipts are uploaded as
// raw resources so PDFs survive untouched.
type Cloudinary struct {
	folder   string
	uploader *uploader.API
}

func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	conf, err := config.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("can't configure cloudinary. Err: %w", err)
	}

	up, err := uploader.NewWithConfiguration(conf)
	if err != nil {
		return nil, fmt.Errorf("can't create cloudinary uploader. Err: %w", err)
	}

	return &Cloudinary{
		folder:   cfg.Folder,
		uploader: up,
	}, nil
}

func (c *Cloudinary) Put(ctx context.Context, path string, r io.Reader) (PutResult, error) {
	result, err := c.uploader.Upload(ctx, r, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     path,
		ResourceType: "raw",
	})
	if err != nil {
		return PutResult{}, fmt.Errorf("upload failed: %w", err)
	}

	return PutResult{
		URL:      result.SecureURL,
		Pathname: result.PublicID,
	}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, pathname string) error {
	_, err := c.uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:     pathname,
		ResourceType: "raw",
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	return nil
}
