package config

import (
	"errors"
)

// TextractConfig AWS Textract 凭证与参数
type TextractConfig struct {
	Region        string  `yaml:"region"`
	Endpoint      string  `yaml:"endpoint"`
	AccessKey     string  `yaml:"access_key"`
	SecretKey     string  `yaml:"secret_key"`
	MinConfidence float32 `yaml:"min_confidence"`
}

func (t *TextractConfig) applyEnv() {
	envString("AWS_REGION", &t.Region)
	envString("AWS_ENDPOINT", &t.Endpoint)
	envString("AWS_ACCESS_KEY", &t.AccessKey)
	envString("AWS_SECRET_KEY", &t.SecretKey)
}

// Validate requires a region. Credentials may come from the default AWS chain.
func (t *TextractConfig) Validate() error {
	if t.Region == "" {
		return errors.New("textract region is required (AWS_REGION)")
	}
	if (t.AccessKey == "") != (t.SecretKey == "") {
		return errors.New("textract access key and secret key must be set together")
	}
	if t.MinConfidence < 0 || t.MinConfidence > 100 {
		return errors.New("textract min_confidence must be between 0 and 100")
	}
	return nil
}

// HasStaticCredentials reports whether explicit keys were configured.
func (t *TextractConfig) HasStaticCredentials() bool {
	return t.AccessKey != "" && t.SecretKey != ""
}

