package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureScheme prefixes Azure blob references: azblob://<container>/<blob>.
const AzureScheme = "azblob"

// AzureSource streams blobs from one storage account.
type AzureSource struct {
	client *azblob.Client
}

// NewAzureSource authenticates with a shared account key.
func NewAzureSource(accountName, accountKey string) (*AzureSource, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureSource{client: client}, nil
}

// Open implements ImageSource.
func (s *AzureSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	container, blob, err := splitBucketKey(ref, AzureScheme)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("download %s: %w", ref, err)
	}
	return resp.Body, nil
}
