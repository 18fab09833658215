package container

import (
	"fmt"
	"net/http"

	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/config"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/gateway"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/preprocess"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/quality"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/service"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/storage"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/transport"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/upload"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	validator       *upload.Validator
	preprocessor    *preprocess.Preprocessor
	assessor        *quality.Assessor
	modelClient     *gateway.Client
	caseImageStore  storage.ImageFetcher
	analysisService service.AnalysisService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	validator := upload.NewValidator(cfg.MaxUploadBytes)
	preprocessor := preprocess.NewPreprocessor()
	assessor := quality.NewAssessor()

	modelClient := gateway.NewClient(
		&http.Client{Timeout: cfg.AnalysisTimeout},
		cfg.ModelEndpoint,
		cfg.ModelAPIKey,
		cfg.ModelName,
	)

	caseImageStore, err := newCaseImageStore(cfg)
	if err != nil {
		return nil, err
	}

	defaults := preprocess.DefaultOptions()
	defaults.TargetWidth = cfg.TargetWidth
	defaults.TargetHeight = cfg.TargetHeight
	defaults.CLAHEClipLimit = cfg.CLAHEClipLimit
	defaults.CLAHETileX = cfg.CLAHETileSize
	defaults.CLAHETileY = cfg.CLAHETileSize

	analysisService := service.NewAnalysisService(
		validator,
		preprocessor,
		assessor,
		modelClient,
		caseImageStore,
		defaults,
	)
	handler := transport.NewHandler(analysisService, cfg)

	return &Container{
		config:          cfg,
		validator:       validator,
		preprocessor:    preprocessor,
		assessor:        assessor,
		modelClient:     modelClient,
		caseImageStore:  caseImageStore,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

func newCaseImageStore(cfg *config.Config) (storage.ImageFetcher, error) {
	switch cfg.CaseStoreBackend {
	case config.CaseStoreAzure:
		store, err := storage.NewAzureCaseStore(
			cfg.AzureAccountName,
			cfg.AzureAccountKey,
			cfg.AzureContainer,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize azure case store: %w", err)
		}
		return store, nil
	case config.CaseStoreHTTP:
		return storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout), nil
	default:
		return nil, fmt.Errorf("unknown case store backend %q", cfg.CaseStoreBackend)
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// AnalysisService returns the analysis service
func (c *Container) AnalysisService() service.AnalysisService {
	return c.analysisService
}
