// Package onnx извлекает векторы признаков изображений локальным прогоном CNN через onnxruntime.
package onnx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/imaging"
	"github.com/DRSN-tech/cartify-backend/internal/metrics"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

// Runner выполняет прямой проход модели.
type Runner interface {
	Run(input []float32) ([]float32, error)
}

// Extractor ограничивает число одновременных прогонов модели семафором.
type Extractor struct {
	name      string
	runner    Runner
	layout    imaging.Layout
	inputSize int
	sem       chan struct{}
	logger    logger.Logger
}

func NewExtractor(name string, runner Runner, layout imaging.Layout, maxConcurrent int, logger logger.Logger) *Extractor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Extractor{
		name:      name,
		runner:    runner,
		layout:    layout,
		inputSize: 3 * imaging.Side * imaging.Side,
		sem:       make(chan struct{}, maxConcurrent),
		logger:    logger,
	}
}

// Layout возвращает порядок осей, который ожидает модель.
func (x *Extractor) Layout() imaging.Layout {
	return x.layout
}

// Extract прогоняет один тензор через модель.
func (x *Extractor) Extract(ctx context.Context, input []float32) (domain.FeatureVector, error) {
	const op = "Extractor.Extract"

	if len(input) != x.inputSize {
		return nil, e.Wrap(op, fmt.Errorf("input has %d values, model expects %d", len(input), x.inputSize))
	}

	select {
	case x.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, e.Wrap(op, ctx.Err())
	}
	defer func() { <-x.sem }()

	start := time.Now()
	out, err := x.runner.Run(input)
	metrics.RecordFeatureExtraction(x.name, time.Since(start), err)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(out) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyVectors)
	}

	return domain.FeatureVector(out), nil
}

// ExtractBatch прогоняет тензоры параллельно и возвращает векторы в порядке входа.
// Первая ошибка отменяет остальные прогоны, ещё не получившие слот.
func (x *Extractor) ExtractBatch(ctx context.Context, inputs [][]float32) ([]domain.FeatureVector, error) {
	const op = "Extractor.ExtractBatch"

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		idx int
		vec domain.FeatureVector
	}

	resCh := make(chan result, len(inputs))
	errCh := make(chan error, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			vec, err := x.Extract(ctx, input)
			if err != nil {
				errCh <- fmt.Errorf("image %d: %w", i+1, err)
				return
			}
			resCh <- result{idx: i, vec: vec}
		}()
	}

	go func() {
		wg.Wait()
		close(errCh)
		close(resCh)
	}()

	vectors := make([]domain.FeatureVector, len(inputs))
	for completed := 0; completed < len(inputs); {
		select {
		case res, ok := <-resCh:
			if ok {
				vectors[res.idx] = res.vec
				completed++
			}
		case err, ok := <-errCh:
			if ok {
				cancel()
				x.logger.Warnf("%s: %s model failed: %v", op, x.name, err)
				return nil, e.Wrap(op, err)
			}
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return vectors, nil
}
