package trainer

// Metrics summarizes an evaluation pass.
type Metrics struct {
	Loss     float64 // Sum of per-batch mean losses
	Accuracy float64 // Correct / Samples, in [0, 1]
	Correct  int
	Samples  int
}

// Evaluation is the result of Test: the metrics plus the predicted class of
// every sample, in iteration order.
type Evaluation struct {
	Metrics
	Predictions []int32
}

// EpochResult records one epoch of Train.
type EpochResult struct {
	Epoch      int      // 0-based epoch index
	TrainLoss  float64  // Sum of per-batch training losses
	Validation *Metrics // nil when Train ran without a validation loader
}

// Values returns the result as a flat tuple: [epoch, trainLoss] without
// validation, [epoch, trainLoss, valLoss, valAccuracy] with it.
func (r EpochResult) Values() []float64 {
	if r.Validation == nil {
		return []float64{float64(r.Epoch), r.TrainLoss}
	}
	return []float64{float64(r.Epoch), r.TrainLoss, r.Validation.Loss, r.Validation.Accuracy}
}

// History is the ordered list of epoch results produced by Train.
type History []EpochResult

// Last returns the most recent result, or false for an empty history.
func (h History) Last() (EpochResult, bool) {
	if len(h) == 0 {
		return EpochResult{}, false
	}
	return h[len(h)-1], true
}

// Best returns the result with the lowest validation loss. Without
// validation results it falls back to the lowest training loss.
func (h History) Best() (EpochResult, bool) {
	if len(h) == 0 {
		return EpochResult{}, false
	}
	best := -1
	for i, r := range h {
		if r.Validation == nil {
			continue
		}
		if best < 0 || r.Validation.Loss < h[best].Validation.Loss {
			best = i
		}
	}
	if best >= 0 {
		return h[best], true
	}
	best = 0
	for i, r := range h {
		if r.TrainLoss < h[best].TrainLoss {
			best = i
		}
	}
	return h[best], true
}

// TrainLosses returns the training loss of every epoch.
func (h History) TrainLosses() []float64 {
	losses := make([]float64, len(h))
	for i, r := range h {
		losses[i] = r.TrainLoss
	}
	return losses
}

// ValidationLosses returns the validation loss of every epoch that has one.
func (h History) ValidationLosses() []float64 {
	var losses []float64
	for _, r := range h {
		if r.Validation != nil {
			losses = append(losses, r.Validation.Loss)
		}
	}
	return losses
}
