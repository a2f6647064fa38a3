package optim

import (
	"fmt"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// SGD implements Stochastic Gradient Descent with momentum, dampening,
// Nesterov acceleration and L2 weight decay.
//
// Update rule, for every parameter p with gradient g:
//
//	g = g + weightDecay * p
//	v = g                                   (first step)
//	v = momentum * v + (1 - dampening) * g  (later steps)
//	g = g + momentum * v                    (Nesterov)
//	g = v                                   (classic momentum)
//	p = p - lr * g
//
// With Momentum == 0 the velocity is never allocated and the update is plain
// gradient descent (with weight decay).
//
// Updates are applied in place on the parameter's raw float32 buffer, so they
// are never recorded on the gradient tape.
type SGD[B tensor.Backend] struct {
	params      []*nn.Parameter[B]
	lr          float32
	momentum    float32
	dampening   float32
	weightDecay float32
	nesterov    bool
	velocities  map[*nn.Parameter[B]]*tensor.RawTensor
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR          float32 // Learning rate (default: 0.01)
	Momentum    float32 // Momentum factor, range [0, 1)
	Dampening   float32 // Dampening for momentum, range [0, 1]
	WeightDecay float32 // L2 penalty added to the gradient
	Nesterov    bool    // Nesterov accelerated gradient; needs Momentum > 0 and Dampening == 0
}

// Validate checks the configuration ranges.
func (c SGDConfig) Validate() error {
	switch {
	case c.LR < 0:
		return errors.Errorf("invalid learning rate %g", c.LR)
	case c.Momentum < 0 || c.Momentum >= 1:
		return errors.Errorf("invalid momentum %g, must be in [0, 1)", c.Momentum)
	case c.Dampening < 0 || c.Dampening > 1:
		return errors.Errorf("invalid dampening %g, must be in [0, 1]", c.Dampening)
	case c.WeightDecay < 0:
		return errors.Errorf("invalid weight decay %g", c.WeightDecay)
	case c.Nesterov && (c.Momentum <= 0 || c.Dampening != 0):
		return errors.New("nesterov momentum requires a momentum and zero dampening")
	}
	return nil
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) (*SGD[B], error) {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	klog.V(1).Infof("SGD: %d parameters, lr=%g momentum=%g dampening=%g weight_decay=%g nesterov=%v",
		len(params), config.LR, config.Momentum, config.Dampening, config.WeightDecay, config.Nesterov)

	return &SGD[B]{
		params:      params,
		lr:          config.LR,
		momentum:    config.Momentum,
		dampening:   config.Dampening,
		weightDecay: config.WeightDecay,
		nesterov:    config.Nesterov,
		velocities:  make(map[*nn.Parameter[B]]*tensor.RawTensor),
	}, nil
}

// Step performs a single optimization step.
//
// Parameters with no gradient (not in computational graph) are skipped and
// their velocity is left untouched.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}
		s.update(param, grad)
	}
}

// update applies the SGD rule to one parameter.
func (s *SGD[B]) update(param *nn.Parameter[B], grad *tensor.RawTensor) {
	p := param.Tensor().Raw().AsFloat32()
	g := grad.AsFloat32()
	if len(p) != len(g) {
		panic(fmt.Sprintf("SGD: gradient for %q has %d elements, parameter has %d", param.Name(), len(g), len(p)))
	}

	var v []float32
	firstStep := false
	if s.momentum != 0 {
		velocity, exists := s.velocities[param]
		if !exists {
			raw, err := tensor.NewRaw(param.Tensor().Shape(), tensor.Float32, param.Tensor().Device())
			if err != nil {
				panic(fmt.Sprintf("SGD: failed to allocate velocity for %q: %v", param.Name(), err))
			}
			velocity = raw
			s.velocities[param] = velocity
			firstStep = true
		}
		v = velocity.AsFloat32()
	}

	for i := range p {
		d := g[i]
		if s.weightDecay != 0 {
			d += s.weightDecay * p[i]
		}
		if v != nil {
			if firstStep {
				v[i] = d
			} else {
				v[i] = s.momentum*v[i] + (1-s.dampening)*d
			}
			if s.nesterov {
				d += s.momentum * v[i]
			} else {
				d = v[i]
			}
		}
		p[i] -= s.lr * d
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}

// StateDict returns the momentum buffers keyed "velocity.{param_index}".
//
// Without momentum, or before the first step, returns an empty map.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, param := range s.params {
		if velocity, exists := s.velocities[param]; exists {
			stateDict[fmt.Sprintf("velocity.%d", i)] = velocity
		}
	}
	return stateDict
}

// LoadStateDict restores momentum buffers saved by StateDict.
//
// Returns an error if a velocity's shape doesn't match its parameter. Missing
// entries are initialized on the parameter's next step.
func (s *SGD[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}
	velocities := make(map[*nn.Parameter[B]]*tensor.RawTensor)
	for i, param := range s.params {
		velocity, exists := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !exists {
			continue
		}
		if !velocity.Shape().Equal(param.Tensor().Shape()) {
			return errors.Errorf("velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Tensor().Shape(), velocity.Shape())
		}
		restored, err := tensor.NewRaw(velocity.Shape(), tensor.Float32, param.Tensor().Device())
		if err != nil {
			return errors.Wrapf(err, "failed to allocate velocity for parameter %d", i)
		}
		copy(restored.AsFloat32(), velocity.AsFloat32())
		velocities[param] = restored
	}
	s.velocities = velocities
	return nil
}
