package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"limbo/encoder"
	"limbo/log"
)

type RemoteOptions struct {
	URL      string
	Model    string
	Language string
	APIKey   string
	Format   encoder.Format
	TempDir  string
}

// Remote uploads staged audio to an OpenAI-compatible transcription
// endpoint and asks for a plain-text answer.
type Remote struct {
	opts   RemoteOptions
	client *TracedClient
}

func NewRemote(opts RemoteOptions) *Remote {
	if opts.Format == "" {
		opts.Format = encoder.FormatWAV16
	}
	return &Remote{opts: opts, client: NewTracedClient()}
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) StagingFormat() encoder.Format { return r.opts.Format }

func (r *Remote) Check() error {
	if r.opts.APIKey == "" {
		return ErrCredentialMissing
	}
	return nil
}

func (r *Remote) Warm() {
	if r.opts.APIKey == "" {
		return
	}
	if d := r.client.Warm(r.opts.URL); d > 0 {
		log.Infof("connection warmed in %dms", d.Milliseconds())
	}
}

func (r *Remote) Transcribe(ctx context.Context, clip Clip) (string, error) {
	if err := r.Check(); err != nil {
		return "", err
	}

	path := clip.Path
	if path == "" {
		staged, err := r.stage(clip.Samples)
		if err != nil {
			return "", err
		}
		defer os.Remove(staged)
		path = staged
	}
	audioData, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading staged audio: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audioData); err != nil {
		return "", err
	}
	writer.WriteField("model", r.opts.Model)
	writer.WriteField("response_format", "text")
	if r.opts.Language != "" {
		writer.WriteField("language", r.opts.Language)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.opts.URL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.opts.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionIO, err)
	}

	m := resp.Timing
	log.RequestMetrics(log.RequestMetricsData{
		Backend:    r.Name(),
		Status:     resp.StatusCode,
		PayloadKB:  float64(len(audioData)) / 1024,
		SetupMs:    float64(m.Setup().Milliseconds()),
		UploadMs:   float64(m.Upload.Milliseconds()),
		WaitMs:     float64(m.Wait.Milliseconds()),
		TotalMs:    float64(m.Total.Milliseconds()),
		ConnReused: m.Reused,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(resp.Body))}
	}
	return strings.TrimSpace(string(resp.Body)), nil
}

func (r *Remote) stage(samples []float32) (string, error) {
	dir := r.opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "limbo_upload_"+uuid.NewString()[:8]+r.opts.Format.Ext())
	if err := encoder.WriteFile(path, samples, r.opts.Format); err != nil {
		return "", fmt.Errorf("staging upload: %w", err)
	}
	return path, nil
}

func (r *Remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
