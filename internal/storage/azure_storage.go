package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureCaseStore serves de-identified teaching-case images out of a blob
// container. The ref passed to FetchImage is the blob name.
type AzureCaseStore struct {
	client    *azblob.Client
	container string
}

func NewAzureCaseStore(accountName, accountKey, container string) (*AzureCaseStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzureCaseStore{client: client, container: container}, nil
}

func (s *AzureCaseStore) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	downloadResponse, err := s.client.DownloadStream(ctx, s.container, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("case blob download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	img, _, err := image.Decode(retryReader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode case blob %q: %w", ref, err)
	}
	return img, nil
}
