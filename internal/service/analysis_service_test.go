package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	apperrors "github.com/shivesh2334-ai/cxr-learning-app-2/internal/apperrors"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/gateway"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/medical"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/preprocess"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/quality"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/upload"
)

type fakeModel struct {
	response string
	err      error
	lastReq  gateway.Request
	calls    int
}

func (f *fakeModel) Analyze(ctx context.Context, req gateway.Request) (string, error) {
	f.calls++
	f.lastReq = req
	return f.response, f.err
}

type fakeFetcher struct {
	img image.Image
	err error
	ref string
}

func (f *fakeFetcher) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	f.ref = ref
	return f.img, f.err
}

func newTestService(model *fakeModel, fetcher *fakeFetcher) AnalysisService {
	return NewAnalysisService(
		upload.NewValidator(1<<20),
		preprocess.NewPreprocessor(),
		quality.NewAssessor(),
		model,
		fetcher,
		preprocess.DefaultOptions().WithTarget(64, 64),
	)
}

func testUpload(t *testing.T) upload.RawUpload {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 80, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*255/79 + y) % 256)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test upload: %v", err)
	}
	return upload.RawUpload{Data: buf.Bytes(), Filename: "film.png", MIMEType: "image/png"}
}

func TestAnalyzeUpload_Success(t *testing.T) {
	model := &fakeModel{response: "Lungs are clear."}
	svc := newTestService(model, &fakeFetcher{})

	resp, err := svc.AnalyzeUpload(context.Background(), AnalysisRequest{
		Upload: testUpload(t),
		Mode:   gateway.ModeTechnicalQuality,
	})
	if err != nil {
		t.Fatalf("AnalyzeUpload failed: %v", err)
	}

	if resp.Analysis != "Lungs are clear." {
		t.Errorf("Expected model text passed through, got %q", resp.Analysis)
	}
	if resp.Mode != gateway.ModeTechnicalQuality {
		t.Errorf("Expected mode echoed, got %s", resp.Mode)
	}
	if resp.Timestamp == "" {
		t.Error("Expected a timestamp")
	}
	if model.calls != 1 {
		t.Errorf("Expected one model call, got %d", model.calls)
	}
	if model.lastReq.Image == nil {
		t.Fatal("Expected the preprocessed image forwarded to the model")
	}
	if model.lastReq.Image.Width != 64 || model.lastReq.Image.Height != 64 {
		t.Errorf("Expected the configured 64x64 grid, got %dx%d",
			model.lastReq.Image.Width, model.lastReq.Image.Height)
	}
}

func TestAnalyzeUpload_QualitySeesUnenhancedFilm(t *testing.T) {
	model := &fakeModel{response: "ok"}
	svc := newTestService(model, &fakeFetcher{})

	// Dark film with default options: CLAHE plus normalization stretch the
	// model input to full range, but the precheck must still flag exposure.
	img := image.NewGray(image.Rect(0, 0, 80, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(5 + (x+y)%20)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test upload: %v", err)
	}

	resp, err := svc.AnalyzeUpload(context.Background(), AnalysisRequest{
		Upload: upload.RawUpload{Data: buf.Bytes(), Filename: "dark.png", MIMEType: "image/png"},
		Mode:   gateway.ModeTechnicalQuality,
	})
	if err != nil {
		t.Fatalf("AnalyzeUpload failed: %v", err)
	}

	if !resp.Quality.Underpenetrated {
		t.Error("Expected underpenetration flagged despite enhancement and normalization")
	}
	if resp.Quality.Acceptable {
		t.Error("Expected the dark film to be unacceptable")
	}
	if model.calls != 1 {
		t.Errorf("Quality issues must not block the model call, got %d calls", model.calls)
	}
}

func TestAnalyzeUpload_InvalidMode(t *testing.T) {
	model := &fakeModel{}
	svc := newTestService(model, &fakeFetcher{})

	_, err := svc.AnalyzeUpload(context.Background(), AnalysisRequest{
		Upload: testUpload(t),
		Mode:   "palmistry",
	})
	if err == nil {
		t.Fatal("Expected error for invalid mode")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if model.calls != 0 {
		t.Error("Model must not be called for an invalid mode")
	}
}

func TestAnalyzeUpload_RejectedUpload(t *testing.T) {
	model := &fakeModel{}
	svc := newTestService(model, &fakeFetcher{})

	_, err := svc.AnalyzeUpload(context.Background(), AnalysisRequest{
		Upload: upload.RawUpload{Data: []byte("garbage"), Filename: "x.txt", MIMEType: "text/plain"},
		Mode:   gateway.ModeTechnicalQuality,
	})
	if err == nil {
		t.Fatal("Expected error for rejected upload")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if model.calls != 0 {
		t.Error("Model must not be called for a rejected upload")
	}
}

func TestAnalyzeUpload_ModelFailurePropagates(t *testing.T) {
	model := &fakeModel{err: apperrors.NewNetworkError("model down", errors.New("boom"))}
	svc := newTestService(model, &fakeFetcher{})

	_, err := svc.AnalyzeUpload(context.Background(), AnalysisRequest{
		Upload: testUpload(t),
		Mode:   gateway.ModeReport,
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Errorf("Expected network error passed through, got %v", err)
	}
}

func TestAnalyzeUpload_PreprocessOverrides(t *testing.T) {
	model := &fakeModel{response: "ok"}
	svc := newTestService(model, &fakeFetcher{})

	opts := preprocess.DefaultOptions().WithTarget(32, 32).WithoutEnhancement()
	_, err := svc.AnalyzeUpload(context.Background(), AnalysisRequest{
		Upload:     testUpload(t),
		Mode:       gateway.ModeTechnicalQuality,
		Preprocess: &opts,
	})
	if err != nil {
		t.Fatalf("AnalyzeUpload failed: %v", err)
	}
	if model.lastReq.Image.Width != 32 || model.lastReq.Image.Height != 32 {
		t.Errorf("Expected override target 32x32, got %dx%d",
			model.lastReq.Image.Width, model.lastReq.Image.Height)
	}
}

func TestComputeCTR_Service(t *testing.T) {
	svc := newTestService(&fakeModel{}, &fakeFetcher{})

	resp, err := svc.ComputeCTR(13, 20)
	if err != nil {
		t.Fatalf("ComputeCTR failed: %v", err)
	}
	if resp.Category != medical.CTRModerateCardiomegaly {
		t.Errorf("Expected moderate cardiomegaly for 0.65, got %s", resp.Category)
	}

	if _, err := svc.ComputeCTR(5, 0); err == nil {
		t.Error("Expected error for zero thoracic width")
	}
}

func TestGetCase(t *testing.T) {
	svc := newTestService(&fakeModel{}, &fakeFetcher{})

	c, err := svc.GetCase("chf")
	if err != nil {
		t.Fatalf("GetCase failed: %v", err)
	}
	if c.ID != "chf" {
		t.Errorf("Expected chf case, got %s", c.ID)
	}

	_, err = svc.GetCase("missing")
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestScoreCase(t *testing.T) {
	svc := newTestService(&fakeModel{}, &fakeFetcher{})

	result, err := svc.ScoreCase("pneumothorax", "left pneumothorax with visible visceral pleural line")
	if err != nil {
		t.Fatalf("ScoreCase failed: %v", err)
	}
	if result.Score <= 0 {
		t.Errorf("Expected a positive score, got %f", result.Score)
	}

	if _, err := svc.ScoreCase("missing", "anything"); err == nil {
		t.Error("Expected error for unknown case")
	}
}

func TestGetCaseImage_NoImageRef(t *testing.T) {
	svc := newTestService(&fakeModel{}, &fakeFetcher{})

	// Built-in cases are text-only; asking for their image is a 404.
	_, err := svc.GetCaseImage(context.Background(), "chf")
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}
