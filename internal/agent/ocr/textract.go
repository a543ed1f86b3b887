package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/feichai0017/clinical-doc-processor/config"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

// textractAPI is the part of the Textract client used here.
type textractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// TextractRecognizer 使用 AWS Textract 识别文本
type TextractRecognizer struct {
	client        textractAPI
	logger        logger.Logger
	minConfidence float32
}

func NewTextractRecognizer(ctx context.Context, cfg *config.TextractConfig, log logger.Logger) (*TextractRecognizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.HasStaticCredentials() {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	client := textract.NewFromConfig(awsCfg, func(o *textract.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	log.Info("Textract recognizer ready", logger.String("region", cfg.Region))
	return newTextractRecognizer(client, cfg.MinConfidence, log), nil
}

func newTextractRecognizer(client textractAPI, minConfidence float32, log logger.Logger) *TextractRecognizer {
	return &TextractRecognizer{
		client:        client,
		logger:        log,
		minConfidence: minConfidence,
	}
}

func (r *TextractRecognizer) Name() string {
	return "textract"
}

// Recognize sends the bitmap to DetectDocumentText and joins the LINE blocks.
func (r *TextractRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	out, err := r.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: data},
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect document text: %w", err)
	}

	lines := r.lineBlocks(out.Blocks)
	r.logger.Debug("Textract blocks received",
		logger.Int("blocks", len(out.Blocks)),
		logger.Int("lines", len(lines)),
	)
	return strings.Join(lines, "\n"), nil
}

func (r *TextractRecognizer) lineBlocks(blocks []types.Block) []string {
	var lines []string
	for _, block := range blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		if block.Confidence != nil && *block.Confidence < r.minConfidence {
			continue
		}
		lines = append(lines, *block.Text)
	}
	return lines
}

func (r *TextractRecognizer) Close() error {
	// textract client doesn't need special cleanup
	return nil
}
