package policystore

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// ConnectionStringEnv holds the Azure Storage connection string used when no
// service URL is configured.
const ConnectionStringEnv = "AZURE_STORAGE_CONNECTION_STRING"

// BlobClient is the subset of the azblob client the store uses.
type BlobClient interface {
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureBlobStore reads policy documents from an Azure Storage container.
type AzureBlobStore struct {
	client    BlobClient
	container string
}

// NewAzureBlobStore creates a store. serviceURL, when set, is used as-is
// (typically carrying a SAS token); otherwise the connection string from
// AZURE_STORAGE_CONNECTION_STRING is used.
func NewAzureBlobStore(serviceURL, container string) (*AzureBlobStore, error) {
	if container == "" {
		return nil, fmt.Errorf("azblob policy store requires a container")
	}

	var (
		client *azblob.Client
		err    error
	)
	if serviceURL != "" {
		client, err = azblob.NewClientWithNoCredential(serviceURL, nil)
	} else {
		connStr := os.Getenv(ConnectionStringEnv)
		if connStr == "" {
			return nil, fmt.Errorf("azblob policy store requires a service URL or %s", ConnectionStringEnv)
		}
		client, err = azblob.NewClientFromConnectionString(connStr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create azblob client: %w", err)
	}
	return NewAzureBlobStoreWithClient(client, container), nil
}

// NewAzureBlobStoreWithClient creates a store with a custom client (for testing).
func NewAzureBlobStoreWithClient(client BlobClient, container string) *AzureBlobStore {
	return &AzureBlobStore{client: client, container: container}
}

// Fetch implements Store.
func (s *AzureBlobStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%s/%s: %w", s.container, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download %s/%s: %w", s.container, key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", s.container, key, err)
	}
	return data, nil
}
