// Package archive guarda los JPK exportados en S3 o un almacenamiento compatible (MinIO).
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/jpk-api/internal/application/reporting"
	"github.com/jhoicas/jpk-api/pkg/config"
	"github.com/jhoicas/jpk-api/pkg/logger"
)

var (
	_ reporting.Archiver = (*S3Archiver)(nil)
	_ reporting.Archiver = NopArchiver{}
)

// putObjectAPI subconjunto del cliente S3 usado por el archivador.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver sube los XML a un bucket bajo {prefix}/{empresa}/{tipo}/{año}/{mes}/{archivo}.xml.
type S3Archiver struct {
	client putObjectAPI
	bucket string
	prefix string
	log    *logger.Logger
}

// NewS3Archiver crea el cliente S3 a partir de la configuración. Sin credenciales estáticas
// se usa la cadena por defecto del SDK (variables de entorno, perfil, rol).
func NewS3Archiver(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive: STORAGE_BUCKET es obligatorio")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: cargar configuración AWS: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3ArchiverWithClient(client, cfg.Bucket, cfg.Prefix, log), nil
}

// NewS3ArchiverWithClient construye el archivador con un cliente ya configurado.
func NewS3ArchiverWithClient(client putObjectAPI, bucket, prefix string, log *logger.Logger) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), log: log}
}

// Key clave del objeto para el documento.
func (a *S3Archiver) Key(doc reporting.Document) string {
	return path.Join(a.prefix, doc.CompanyID, doc.Kind,
		fmt.Sprintf("%04d", doc.Year), fmt.Sprintf("%02d", doc.Month), doc.Filename+".xml")
}

// Archive sube el XML con el digest como metadato.
func (a *S3Archiver) Archive(ctx context.Context, doc reporting.Document) (string, error) {
	key := a.Key(doc)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(doc.Content),
		ContentLength: aws.Int64(int64(len(doc.Content))),
		ContentType:   aws.String("application/xml"),
	}
	if doc.Digest != "" {
		input.Metadata = map[string]string{"sha256-c14n": doc.Digest}
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("archive: subir %s: %w", key, err)
	}
	a.log.Info().Str("bucket", a.bucket).Str("key", key).Int("bytes", len(doc.Content)).Msg("JPK archivado")
	return key, nil
}

// NopArchiver no guarda nada; se usa con el almacenamiento desactivado.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, reporting.Document) (string, error) { return "", nil }
