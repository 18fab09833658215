package service

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"time"

	apperrors "github.com/shivesh2334-ai/cxr-learning-app-2/internal/apperrors"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/cases"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/gateway"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/medical"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/preprocess"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/quality"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/storage"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/upload"
)

// ModelGateway is the outward boundary to the hosted model.
type ModelGateway interface {
	Analyze(ctx context.Context, req gateway.Request) (string, error)
}

// AnalysisRequest carries one upload through the pipeline to the model.
type AnalysisRequest struct {
	Upload          upload.RawUpload
	Mode            gateway.Mode
	Region          string
	ClinicalHistory string
	// Preprocess overrides the configured defaults when non-zero.
	Preprocess *preprocess.Options
}

// AnalysisResponse is the rendered outcome of one analysis request.
type AnalysisResponse struct {
	Mode              gateway.Mode   `json:"mode"`
	Region            string         `json:"region,omitempty"`
	Quality           quality.Report `json:"quality"`
	Analysis          string         `json:"analysis"`
	Timestamp         string         `json:"timestamp"`
	ProcessingTimeSec float64        `json:"processing_time_sec"`
}

// CTRResponse pairs a measurement with its band.
type CTRResponse struct {
	Measurement medical.CTRMeasurement `json:"measurement"`
	Category    medical.CTRCategory    `json:"category"`
}

// AnalysisService orchestrates validation, preprocessing, the local
// quality precheck, and the model gateway. All state is request-scoped.
type AnalysisService interface {
	AnalyzeUpload(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error)
	ComputeCTR(cardiacWidth, thoracicWidth float64) (*CTRResponse, error)

	ListCases() []cases.Case
	GetCase(id string) (cases.Case, error)
	ScoreCase(id, answer string) (*cases.ScoreResult, error)
	GetCaseImage(ctx context.Context, id string) ([]byte, error)
}

type analysisService struct {
	validator    *upload.Validator
	preprocessor *preprocess.Preprocessor
	assessor     *quality.Assessor
	model        ModelGateway
	caseImages   storage.ImageFetcher
	defaults     preprocess.Options
}

func NewAnalysisService(
	validator *upload.Validator,
	preprocessor *preprocess.Preprocessor,
	assessor *quality.Assessor,
	model ModelGateway,
	caseImages storage.ImageFetcher,
	defaults preprocess.Options,
) AnalysisService {
	return &analysisService{
		validator:    validator,
		preprocessor: preprocessor,
		assessor:     assessor,
		model:        model,
		caseImages:   caseImages,
		defaults:     defaults,
	}
}

func (s *analysisService) AnalyzeUpload(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	start := time.Now()

	if !gateway.ValidMode(req.Mode) {
		return nil, apperrors.NewValidationError("unsupported analysis mode", nil).
			WithDetails("mode=%s", req.Mode)
	}

	if result := s.validator.Validate(req.Upload); !result.OK {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("upload rejected: %s", result.Reason), nil).
			WithDetails("%s", result.Detail)
	}

	opts := s.defaults
	if req.Preprocess != nil {
		opts = *req.Preprocess
	}

	processed, err := s.preprocessor.Run(req.Upload.Data, opts)
	if err != nil {
		return nil, err
	}

	// Assess the film as captured, not the enhanced and normalized grid:
	// normalization would hide penetration and contrast faults.
	report := s.assessor.Assess(processed.Film)

	analysis, err := s.model.Analyze(ctx, gateway.Request{
		Image:           processed.Image,
		Mode:            req.Mode,
		Region:          req.Region,
		ClinicalHistory: req.ClinicalHistory,
	})
	if err != nil {
		return nil, err
	}

	return &AnalysisResponse{
		Mode:              req.Mode,
		Region:            req.Region,
		Quality:           report,
		Analysis:          analysis,
		Timestamp:         start.UTC().Format(time.RFC3339),
		ProcessingTimeSec: time.Since(start).Seconds(),
	}, nil
}

func (s *analysisService) ComputeCTR(cardiacWidth, thoracicWidth float64) (*CTRResponse, error) {
	measurement, err := medical.ComputeCTR(cardiacWidth, thoracicWidth)
	if err != nil {
		return nil, err
	}
	return &CTRResponse{
		Measurement: measurement,
		Category:    medical.CategorizeCTR(measurement),
	}, nil
}

func (s *analysisService) ListCases() []cases.Case {
	return cases.Library()
}

func (s *analysisService) GetCase(id string) (cases.Case, error) {
	c, ok := cases.Find(id)
	if !ok {
		return cases.Case{}, apperrors.NewNotFoundError("unknown case", nil).
			WithDetails("case_id=%s", id)
	}
	return c, nil
}

func (s *analysisService) ScoreCase(id, answer string) (*cases.ScoreResult, error) {
	c, err := s.GetCase(id)
	if err != nil {
		return nil, err
	}
	result := cases.ScoreFindings(c, answer)
	return &result, nil
}

func (s *analysisService) GetCaseImage(ctx context.Context, id string) ([]byte, error) {
	c, err := s.GetCase(id)
	if err != nil {
		return nil, err
	}
	if c.ImageRef == "" {
		return nil, apperrors.NewNotFoundError("case has no stored image", nil).
			WithDetails("case_id=%s", id)
	}

	img, err := s.caseImages.FetchImage(ctx, c.ImageRef)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch case image", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.NewInternalError("failed to encode case image", err)
	}
	return buf.Bytes(), nil
}
