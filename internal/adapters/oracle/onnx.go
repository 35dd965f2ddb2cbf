package oracle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXOracle runs an exported sequence classifier with a single sigmoid output
type ONNXOracle struct {
	session   *ort.AdvancedSession
	tokenizer *WordIndexTokenizer
	seqLen    int

	input  *ort.Tensor[int64]
	output *ort.Tensor[float32]

	mu sync.Mutex
}

// LoadONNX initializes the runtime, the word index and the session
func LoadONNX(modelPath, vocabPath, sharedLibrary string, seqLen int) (*ONNXOracle, error) {
	if modelPath == "" {
		return nil, errors.New("model path is empty")
	}
	if seqLen <= 0 {
		seqLen = 120
	}

	libPath := resolveSharedLibraryPath(sharedLibrary, filepath.Dir(modelPath))
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	tokenizer, err := LoadWordIndexTokenizer(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	input, err := ort.NewEmptyTensor[int64](ort.NewShape(1, int64(seqLen)))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	inputNames, outputNames, err := ioNames(modelPath)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &ONNXOracle{
		session:   session,
		tokenizer: tokenizer,
		seqLen:    seqLen,
		input:     input,
		output:    output,
	}, nil
}

// Predict returns the model's scam probability for text
func (o *ONNXOracle) Predict(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ids := o.tokenizer.Encode(text, o.seqLen)

	o.mu.Lock()
	defer o.mu.Unlock()

	copy(o.input.GetData(), ids)
	if err := o.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run: %w", err)
	}

	out := o.output.GetData()
	if len(out) == 0 {
		return 0, errors.New("onnx run produced no output")
	}
	p := float64(out[0])
	// Models exported without the final activation emit a logit
	if p < 0 || p > 1 {
		p = sigmoid(p)
	}
	return p, nil
}

// Close releases the session and its tensors
func (o *ONNXOracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	if o.session != nil {
		errs = append(errs, o.session.Destroy())
	}
	if o.input != nil {
		errs = append(errs, o.input.Destroy())
	}
	if o.output != nil {
		errs = append(errs, o.output.Destroy())
	}
	return errors.Join(errs...)
}

func ioNames(modelPath string) ([]string, []string, error) {
	inputs, outputs, err := ort.GetInputOutputInfoWithOptions(modelPath, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("inspect model io: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, nil, fmt.Errorf("expected a single-input single-output model, got %d inputs and %d outputs", len(inputs), len(outputs))
	}
	return []string{inputs[0].Name}, []string{outputs[0].Name}, nil
}

// resolveSharedLibraryPath prefers the configured path, then
// ONNXRUNTIME_SHARED_LIBRARY_PATH, then common install locations
func resolveSharedLibraryPath(configured, modelDir string) string {
	if configured != "" {
		return configured
	}
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
