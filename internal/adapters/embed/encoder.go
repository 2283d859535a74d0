package embed

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jaypipes/ghw"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// EncoderConfig configures the ONNX sentence encoder.
type EncoderConfig struct {
	// OrtLibrary points at the ONNX Runtime shared library. Empty uses the
	// platform default search path.
	OrtLibrary    string
	ModelPath     string
	TokenizerPath string
	MaxSeqLen     int
	PreferGPU     bool
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initRuntime initializes the process-wide ONNX Runtime environment once.
func initRuntime(library string) error {
	ortInitOnce.Do(func() {
		if library != "" {
			ort.SetSharedLibraryPath(library)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Encoder turns text into a sentence embedding with a MiniLM-style ONNX
// model: tokenize, run the transformer, mean-pool the token vectors.
type Encoder struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tk        *tokenizer.Tokenizer
	maxSeqLen int
	modelPath string
	device    string
}

// NewEncoder loads the tokenizer and model. With PreferGPU set and an NVIDIA
// card present it first tries a CUDA session; any failure there falls back to
// CPU so a broken driver never takes grading down.
func NewEncoder(cfg EncoderConfig) (*Encoder, error) {
	if err := initRuntime(cfg.OrtLibrary); err != nil {
		return nil, fmt.Errorf("initializing onnxruntime: %w", err)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer %s: %w", cfg.TokenizerPath, err)
	}

	maxSeqLen := cfg.MaxSeqLen
	if maxSeqLen <= 0 {
		maxSeqLen = 256
	}

	enc := &Encoder{
		tk:        tk,
		maxSeqLen: maxSeqLen,
		modelPath: cfg.ModelPath,
	}

	if cfg.PreferGPU && hasNvidiaGPU() {
		session, err := newSession(cfg.ModelPath, true)
		if err == nil {
			enc.session = session
			enc.device = "cuda"
			return enc, nil
		}
	}

	session, err := newSession(cfg.ModelPath, false)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", cfg.ModelPath, err)
	}
	enc.session = session
	enc.device = "cpu"
	return enc, nil
}

func newSession(modelPath string, cuda bool) (*ort.DynamicAdvancedSession, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	if cuda {
		cudaOptions, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, err
		}
		defer cudaOptions.Destroy()
		if err := cudaOptions.Update(map[string]string{"device_id": "0"}); err != nil {
			return nil, err
		}
		if err := options.AppendExecutionProviderCUDA(cudaOptions); err != nil {
			return nil, err
		}
	}

	return ort.NewDynamicAdvancedSession(modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		options)
}

// hasNvidiaGPU probes PCI devices for an NVIDIA graphics card.
func hasNvidiaGPU() bool {
	gpu, err := ghw.GPU()
	if err != nil {
		return false
	}
	for _, card := range gpu.GraphicsCards {
		if card.DeviceInfo == nil || card.DeviceInfo.Vendor == nil {
			continue
		}
		if strings.Contains(strings.ToLower(card.DeviceInfo.Vendor.Name), "nvidia") {
			return true
		}
	}
	return false
}

// Device reports which execution provider the session runs on.
func (e *Encoder) Device() string {
	return e.device
}

// ModelPath reports the loaded model file.
func (e *Encoder) ModelPath() string {
	return e.modelPath
}

// Encode returns the mean-pooled sentence embedding for text.
func (e *Encoder) Encode(text string) ([]float32, error) {
	encoding, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenizing: %w", err)
	}

	ids := encoding.Ids
	typeIds := encoding.TypeIds
	mask := encoding.AttentionMask
	if len(ids) > e.maxSeqLen {
		ids = ids[:e.maxSeqLen]
		typeIds = typeIds[:e.maxSeqLen]
		mask = mask[:e.maxSeqLen]
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("tokenizer produced no tokens")
	}

	seqLen := int64(len(ids))
	inputIds := make([]int64, seqLen)
	typeIds64 := make([]int64, seqLen)
	mask64 := make([]int64, seqLen)
	for i := range ids {
		inputIds[i] = int64(ids[i])
		typeIds64[i] = int64(typeIds[i])
		mask64[i] = int64(mask[i])
	}

	shape := ort.NewShape(1, seqLen)
	idsTensor, err := ort.NewTensor(shape, inputIds)
	if err != nil {
		return nil, err
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask64)
	if err != nil {
		return nil, err
	}
	defer maskTensor.Destroy()
	typeTensor, err := ort.NewTensor(shape, typeIds64)
	if err != nil {
		return nil, err
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}

	// The session is not safe for concurrent Run calls.
	e.mu.Lock()
	err = e.session.Run([]ort.Value{idsTensor, maskTensor, typeTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("running model: %w", err)
	}

	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	defer outTensor.Destroy()

	outShape := outTensor.GetShape()
	if len(outShape) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", outShape)
	}
	hidden := int(outShape[2])
	data := outTensor.GetData()

	return meanPool(data, mask64, hidden), nil
}

// meanPool averages the token vectors of attended positions.
func meanPool(data []float32, mask []int64, hidden int) []float32 {
	pooled := make([]float32, hidden)
	attended := 0
	for tok := range mask {
		if mask[tok] == 0 {
			continue
		}
		attended++
		base := tok * hidden
		for d := 0; d < hidden; d++ {
			pooled[d] += data[base+d]
		}
	}
	if attended == 0 {
		return pooled
	}
	for d := range pooled {
		pooled[d] /= float32(attended)
	}
	return pooled
}

// Close releases the ONNX session.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}
