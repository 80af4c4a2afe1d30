package transport

import (
	"net/http"

	"github.com/go-chi/render"

	apperrors "insightlens/internal/errors"
)

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

// renderNoRun answers requests that arrive before any pipeline run finished.
func renderNoRun(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, &apperrors.APIError{
		StatusCode: http.StatusNotFound,
		ErrorCode:  "NO_RUN",
		Message:    "no pipeline run available yet",
	})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	result := s.result()
	if result == nil {
		renderNoRun(w, r)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id":  result.RunID,
		"stats":   result.Stats,
		"roles":   result.Roles,
		"timings": result.Timings,
	})
}

func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	result := s.result()
	if result == nil {
		renderNoRun(w, r)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id":   result.RunID,
		"findings": result.Findings,
	})
}

func (s *Server) getCustomers(w http.ResponseWriter, r *http.Request) {
	result := s.result()
	if result == nil {
		renderNoRun(w, r)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id":    result.RunID,
		"customers": result.Customers,
	})
}

func (s *Server) getScores(w http.ResponseWriter, r *http.Request) {
	result := s.result()
	if result == nil {
		renderNoRun(w, r)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id": result.RunID,
		"scores": result.Scores,
	})
}

func (s *Server) getSegments(w http.ResponseWriter, r *http.Request) {
	result := s.result()
	if result == nil {
		renderNoRun(w, r)
		return
	}
	if result.Segments == nil {
		_ = render.Render(w, r, &apperrors.APIError{
			StatusCode: http.StatusUnprocessableEntity,
			ErrorCode:  "INSUFFICIENT_DATA",
			Message:    "segmentation was skipped for this run",
		})
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id":   result.RunID,
		"segments": result.Segments,
	})
}

// getModels reports model evaluation metrics only; fitted model parameters
// stay in their persisted bundles.
func (s *Server) getModels(w http.ResponseWriter, r *http.Request) {
	result := s.result()
	if result == nil {
		renderNoRun(w, r)
		return
	}

	models := map[string]interface{}{}
	if f := result.Models.Forecast; f != nil {
		models["sales_forecast"] = map[string]interface{}{
			"rmse":        f.RMSE,
			"importances": f.Importances,
			"train_rows":  f.TrainRows,
			"test_rows":   f.TestRows,
		}
	}
	if c := result.Models.Classification; c != nil {
		models["high_value_customer"] = map[string]interface{}{
			"accuracy":    c.Accuracy,
			"threshold":   c.Threshold,
			"importances": c.Importances,
			"report":      c.Report,
		}
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id": result.RunID,
		"models": models,
	})
}
