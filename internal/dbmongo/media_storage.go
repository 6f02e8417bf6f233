package dbmongo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"feedview/internal/common"
)

type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
	}
}

type MediaFile struct {
	ID         string               `json:"id"`       // GridFS ObjectID
	Filename   string               `json:"filename"` // Original filename
	Size       int64                `json:"size"`     // File size in bytes
	FileType   common.MediaFileType `json:"file_type"`
	MimeType   string               `json:"mime_type"`
	Origin     string               `json:"origin"` // who seeded it, e.g. "seed"
	UploadedAt time.Time            `json:"uploaded_at"`
}

// UploadFile is used to seed the bucket with feed media.
func (ms *MediaStorage) UploadFile(ctx context.Context, filename, mimeType, origin string, content io.Reader) (*MediaFile, error) {
	fileType := common.DetectFileType(mimeType)

	metadata := bson.M{
		"file_type":   fileType.String(),
		"mime_type":   mimeType,
		"origin":      origin,
		"uploaded_at": time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := ms.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		return nil, fmt.Errorf("file copy failed: %w", err)
	}

	return &MediaFile{
		ID:         stream.FileID.(primitive.ObjectID).Hex(),
		Filename:   filename,
		Size:       size,
		FileType:   fileType,
		MimeType:   mimeType,
		Origin:     origin,
		UploadedAt: time.Now(),
	}, nil
}

// DownloadFile opens a stream for fileID. The caller closes it.
func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *MediaFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file ID: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		_ = bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	return stream, &MediaFile{
		ID:         fileID,
		Filename:   fileInfo.Name,
		Size:       fileInfo.Length,
		FileType:   common.MediaFileType(getStringFromMap(metadata, "file_type")),
		MimeType:   getStringFromMap(metadata, "mime_type"),
		Origin:     getStringFromMap(metadata, "origin"),
		UploadedAt: fileInfo.UploadDate,
	}, nil
}

// ReadFile downloads fileID fully, refusing files larger than maxBytes
// when maxBytes > 0.
func (ms *MediaStorage) ReadFile(ctx context.Context, fileID string, maxBytes int64) ([]byte, error) {
	rc, info, err := ms.DownloadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if maxBytes > 0 && info.Size > maxBytes {
		return nil, fmt.Errorf("file %s is %d bytes, limit %d", fileID, info.Size, maxBytes)
	}
	return io.ReadAll(rc)
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", err)
	}
	return ms.gridFS.Delete(objectID)
}

// getStringFromMap reads a string metadata field, "" when absent.
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
