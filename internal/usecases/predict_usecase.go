package usecases

import (
	"context"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/upstream"
)

// DiagnosisProvider produces a diagnosis from one image using one upstream
// credential. Implemented by upstream.GeminiClient.
type DiagnosisProvider interface {
	Diagnose(ctx context.Context, cred upstream.Credential, image []byte, mimeType string) (*entities.Prediction, error)
}

// PredictUsecase runs plant-disease diagnosis against the upstream model,
// walking the credential pool with per-credential retries. It never returns
// an upstream error to the caller: when every credential is exhausted the
// response degrades to a generic diagnosis.
type PredictUsecase struct {
	provider DiagnosisProvider
	pool     []upstream.Credential
	policy   upstream.RetryPolicy
}

func NewPredictUsecase(provider DiagnosisProvider, pool []upstream.Credential, policy upstream.RetryPolicy) *PredictUsecase {
	return &PredictUsecase{
		provider: provider,
		pool:     pool,
		policy:   policy,
	}
}

// Predict diagnoses the given image. The result is never nil on a nil error.
func (u *PredictUsecase) Predict(ctx context.Context, image []byte, mimeType string) (*entities.Prediction, error) {
	result := upstream.TryAll(ctx, u.pool, u.policy, FallbackPrediction(), func(ctx context.Context, cred upstream.Credential) (*entities.Prediction, error) {
		return u.provider.Diagnose(ctx, cred, image, mimeType)
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return result, nil
}

// FallbackPrediction is the degraded response served when no upstream
// credential can produce a diagnosis. It is generic but actionable.
func FallbackPrediction() *entities.Prediction {
	return &entities.Prediction{
		Disease:     "Plant Disease Detected",
		Confidence:  0.5,
		Severity:    "Medium",
		Stage:       "Unknown",
		YieldImpact: "10-20%",
		SpreadRisk:  "Medium",
		Recovery:    "Possible with treatment",
		Symptoms: []string{
			"Visible symptoms on leaves",
			"Consult an expert for accurate identification",
		},
		ActionPlan: entities.ActionPlan{
			Immediate: "Isolate affected plants and remove heavily damaged leaves.",
			ShortTerm: "Apply a broad-spectrum organic treatment and monitor daily for spread.",
		},
		Treatments: entities.Treatments{
			Organic:  "Neem oil spray (5ml/L), improve air circulation",
			Chemical: "Consult a local agronomist before applying fungicide",
		},
		Degraded: true,
	}
}
