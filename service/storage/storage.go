package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Vansh983/ai-ta/config"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/google/uuid"
)

const presignExpiry = time.Hour

// Client is an OSS-backed blob store holding course materials and chat
// archives.
type Client struct {
	client *oss.Client
	bucket string
}

func NewClient(cfg config.OSSConfig) *Client {
	ossCfg := &oss.Config{
		Region: oss.Ptr(cfg.Region),
		CredentialsProvider: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.AccessKeySecret,
		),
	}
	return &Client{
		client: oss.NewClient(ossCfg),
		bucket: cfg.BucketName,
	}
}

// MaterialKey builds the object key a course material is stored under.
func MaterialKey(courseID, materialID uuid.UUID, filename string) string {
	return fmt.Sprintf("courses/%s/materials/%s/%s", courseID, materialID, filename)
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := c.client.GetObject(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %v", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %v", key, err)
	}
	return data, nil
}

func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	req := &oss.PutObjectRequest{
		Bucket:   oss.Ptr(c.bucket),
		Key:      oss.Ptr(key),
		Body:     bytes.NewReader(data),
		Metadata: metadata,
	}
	if contentType != "" {
		req.ContentType = oss.Ptr(contentType)
	}
	if _, err := c.client.PutObject(ctx, req); err != nil {
		return fmt.Errorf("failed to put object %s: %v", key, err)
	}
	return nil
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	return c.client.IsObjectExist(ctx, c.bucket, key)
}

// UploadMaterial stores a course material blob and returns the object key it
// was written under.
func (c *Client) UploadMaterial(ctx context.Context, courseID, materialID uuid.UUID, filename, contentType string, data []byte) (string, error) {
	key := MaterialKey(courseID, materialID, filename)
	metadata := map[string]string{
		"course_id":   courseID.String(),
		"material_id": materialID.String(),
		"filename":    filename,
		"uploaded_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.Put(ctx, key, data, contentType, metadata); err != nil {
		return "", err
	}
	return key, nil
}

// PresignGetURL returns a time-limited download URL for an object.
func (c *Client) PresignGetURL(ctx context.Context, key string) (string, error) {
	result, err := c.client.Presign(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(key),
	}, oss.PresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %v", key, err)
	}
	return result.URL, nil
}

// Ping probes the bucket. The probe object does not need to exist; only a
// transport or auth failure reports the store unreachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.IsObjectExist(ctx, c.bucket, "healthcheck"); err != nil {
		return fmt.Errorf("storage unreachable: %v", err)
	}
	return nil
}
