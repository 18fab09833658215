package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/shivesh2334-ai/cxr-learning-app-2/internal/apperrors"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/cases"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/config"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/gateway"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/logger"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/medical"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/service"
	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/upload"
)

// CTRRequest carries the two silhouette widths. Pointers distinguish a
// missing field from a legitimate zero, which must reach the domain check.
type CTRRequest struct {
	CardiacWidth  *float64 `json:"cardiac_width" binding:"required"`
	ThoracicWidth *float64 `json:"thoracic_width" binding:"required"`
}

// ScoreRequest carries a trainee's free-text findings for a case.
type ScoreRequest struct {
	Answer string `json:"answer" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewHandler(svc service.AnalysisService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxUploadBytes+1<<20), // headroom for multipart framing
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.POST("/analyze", analyzeUpload(svc, cfg))
	r.POST("/ctr", computeCTR(svc))
	r.POST("/differential", generateDifferential)
	r.GET("/regions", listRegions)
	r.GET("/quiz", listQuiz)
	r.GET("/cases", listCases(svc))
	r.GET("/cases/:id", getCase(svc))
	r.GET("/cases/:id/image", getCaseImage(svc, cfg))
	r.POST("/cases/:id/score", scoreCase(svc))

	return r
}

func analyzeUpload(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing analysis request")

		fileHeader, err := c.FormFile("image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "missing image file (form field 'image')", err)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to open uploaded file", err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read uploaded file", err)
			return
		}

		mode := gateway.Mode(c.DefaultPostForm("mode", string(gateway.ModeTechnicalQuality)))

		resp, err := svc.AnalyzeUpload(ctx, service.AnalysisRequest{
			Upload: upload.RawUpload{
				Data:     data,
				Filename: fileHeader.Filename,
				MIMEType: fileHeader.Header.Get("Content-Type"),
			},
			Mode:            mode,
			Region:          c.PostForm("region"),
			ClinicalHistory: c.PostForm("clinical_history"),
		})
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"filename": fileHeader.Filename,
				"mode":     mode,
				"ip":       c.ClientIP(),
			}).Error("Analysis failed")
			respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"filename":           fileHeader.Filename,
			"mode":               mode,
			"acceptable_quality": resp.Quality.Acceptable,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Analysis completed")

		c.JSON(http.StatusOK, resp)
	}
}

func computeCTR(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CTRRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.ComputeCTR(*req.CardiacWidth, *req.ThoracicWidth)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid measurement", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func generateDifferential(c *gin.Context) {
	var sel medical.PatternSelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"differentials": medical.GenerateDifferential(sel),
	})
}

func listRegions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"anatomic_regions":     medical.AnatomicRegions(),
		"technical_parameters": medical.TechnicalParameters(),
	})
}

func listQuiz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": cases.Quiz()})
}

func listCases(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"cases": svc.ListCases()})
	}
}

func getCase(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := svc.GetCase(c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "case lookup failed", err)
			return
		}
		c.JSON(http.StatusOK, found)
	}
}

func getCaseImage(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ImageFetchTimeout)
		defer cancel()

		data, err := svc.GetCaseImage(ctx, c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "case image fetch failed", err)
			return
		}
		c.Data(http.StatusOK, "image/png", data)
	}
}

func scoreCase(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := svc.ScoreCase(c.Param("id"), req.Answer)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "case scoring failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helpers

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
