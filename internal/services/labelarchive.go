package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/mosewear/mose-webshop-sub004/internal/database"
)

// ArchiveReturnLabel bewaart de label-PDF in het MinIO-archief.
// De provider houdt labels beperkt beschikbaar; het archief is onze
// eigen kopie voor de klantenservice.
func ArchiveReturnLabel(ctx context.Context, returnID string, pdf []byte) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO niet geïnitialiseerd")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	objectName := fmt.Sprintf("retourlabels/%s.pdf", returnID)

	_, err := database.MinIO.PutObject(ctx, bucket, objectName,
		bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("s3://%s/%s", bucket, objectName), nil
}

// PresignedLabelURL geeft een tijdelijke downloadlink naar een gearchiveerd
// label, voor de back-office.
func PresignedLabelURL(ctx context.Context, returnID string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO niet geïnitialiseerd")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	objectName := fmt.Sprintf("retourlabels/%s.pdf", returnID)

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf(`attachment; filename="retourlabel-%s.pdf"`, returnID))

	u, err := database.MinIO.PresignedGetObject(ctx, bucket, objectName, 15*time.Minute, reqParams)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
