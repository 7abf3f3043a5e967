package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/interfaces/http/response"
)

// maxImageBytes caps uploaded image size at 10 MB.
const maxImageBytes = 10 << 20

// Predictor runs a diagnosis for one uploaded image. Implemented by
// usecases.PredictUsecase.
type Predictor interface {
	Predict(ctx context.Context, image []byte, mimeType string) (*entities.Prediction, error)
}

type PredictHandler struct {
	predictor Predictor
}

func NewPredictHandler(predictor Predictor) *PredictHandler {
	return &PredictHandler{predictor: predictor}
}

// Predict accepts a multipart image upload under the "file" field and
// returns a disease diagnosis.
func (h *PredictHandler) Predict(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("image file is required"))
		return
	}
	if fileHeader.Size > maxImageBytes {
		response.Error(c, domainerrors.BadRequest("image exceeds the 10MB limit"))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		response.Error(c, domainerrors.BadRequest("uploaded file must be an image"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, domainerrors.InternalError(err))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		response.Error(c, domainerrors.InternalError(err))
		return
	}
	if len(image) == 0 {
		response.Error(c, domainerrors.BadRequest("uploaded image is empty"))
		return
	}

	prediction, err := h.predictor.Predict(c.Request.Context(), image, mimeType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prediction)
}
