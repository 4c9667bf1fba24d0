package onnx

import (
	"fmt"
	"sync"

	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/jimlawless/whereami"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	envOnce sync.Once
	envErr  error
)

// InitEnvironment загружает разделяемую библиотеку onnxruntime. Повторные вызовы ничего не делают.
func InitEnvironment(sharedLibraryPath string) error {
	envOnce.Do(func() {
		if sharedLibraryPath != "" {
			ort.SetSharedLibraryPath(sharedLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = e.Wrap(whereami.WhereAmI(), err)
		}
	})
	return envErr
}

// DestroyEnvironment освобождает ресурсы onnxruntime после закрытия всех сессий.
func DestroyEnvironment() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Session — загруженная модель с одним входом и одним выходом.
type Session struct {
	session     *ort.DynamicAdvancedSession
	inputShape  ort.Shape
	outputShape ort.Shape
}

// NewSession загружает модель. Формы задают размер входного тензора и ожидаемого выхода.
func NewSession(modelPath, inputName, outputName string, inputShape, outputShape []int64) (*Session, error) {
	s, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputName}, []string{outputName}, nil)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("load model %s: %w", modelPath, err))
	}

	return &Session{
		session:     s,
		inputShape:  ort.NewShape(inputShape...),
		outputShape: ort.NewShape(outputShape...),
	}, nil
}

// Run выполняет один прямой проход и возвращает выход модели в виде плоского среза.
func (s *Session) Run(input []float32) ([]float32, error) {
	in, err := ort.NewTensor(s.inputShape, input)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](s.outputShape)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer out.Destroy()

	if err := s.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data := out.GetData()
	res := make([]float32, len(data))
	copy(res, data)
	return res, nil
}

func (s *Session) Close() error {
	return s.session.Destroy()
}
