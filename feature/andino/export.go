package andino

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"andino-loader/core/convert"
	"andino-loader/core/importer"
	"andino-loader/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Exporter persists rejected rows for inspection: always as a local CSV,
// optionally mirrored to object storage under the run id.
type Exporter struct {
	outputDir string
	client    storage.Client
	bucket    string
	upload    bool
	logger    *zap.Logger
}

// NewExporter creates an exporter. client may be nil when upload is false.
func NewExporter(outputDir string, client storage.Client, bucket string, upload bool, logger *zap.Logger) *Exporter {
	return &Exporter{
		outputDir: outputDir,
		client:    client,
		bucket:    bucket,
		upload:    upload,
		logger:    logger,
	}
}

// ExportRejected writes the table's rejected rows to
// <output>/<table>_invalidas.csv, column order preserved, with the
// rejection reason appended. The upload mirror is best effort: a storage
// failure is logged and the local file stands.
func (x *Exporter) ExportRejected(ctx context.Context, runID, table string, rejected []importer.Rejected) (string, error) {
	if len(rejected) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	fields := rejected[0].Record.Fields()
	header := append(append([]string{}, fields...), "motivo", "columna")
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, rej := range rejected {
		row := make([]string, 0, len(header))
		for _, f := range fields {
			v, _ := rej.Record.Get(f)
			if v == nil {
				row = append(row, "")
			} else {
				row = append(row, convert.ToString(v))
			}
		}
		row = append(row, rej.Kind.String(), rej.Column)
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(x.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(x.outputDir, table+"_invalidas.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write quarantine export: %w", err)
	}
	x.logger.Warn("rejected rows exported",
		zap.String("table", table),
		zap.Int("rows", len(rejected)),
		zap.String("path", path),
	)

	if x.upload && x.client != nil {
		x.uploadExport(ctx, runID, table, buf.Bytes())
	}
	return path, nil
}

func (x *Exporter) uploadExport(ctx context.Context, runID, table string, data []byte) {
	exists, err := x.client.BucketExists(ctx, x.bucket)
	if err == nil && !exists {
		err = x.client.MakeBucket(ctx, x.bucket, minio.MakeBucketOptions{})
	}
	if err != nil {
		x.logger.Warn("quarantine upload skipped, bucket unavailable",
			zap.String("bucket", x.bucket),
			zap.Error(err),
		)
		return
	}

	object := fmt.Sprintf("quarantine/%s/%s.csv", runID, table)
	_, err = x.client.PutObject(ctx, x.bucket, object,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		x.logger.Warn("quarantine upload failed",
			zap.String("object", object),
			zap.Error(err),
		)
		return
	}
	x.logger.Info("quarantine export uploaded",
		zap.String("bucket", x.bucket),
		zap.String("object", object),
	)
}
