package tagger

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"lowher/internal/logger"
	"lowher/internal/types"
)

const (
	// maxSequenceLength caps the model input; words beyond it keep
	// their surface category.
	maxSequenceLength = 512

	clsToken = "[CLS]"
	sepToken = "[SEP]"
	unkToken = "[UNK]"
)

// ONNXConfig holds the file locations for the ONNX tagger.
type ONNXConfig struct {
	// ModelPath points at a BERT-style token-classification model.
	ModelPath string
	// VocabPath points at the wordpiece vocabulary, one token per line.
	VocabPath string
	// LabelsPath points at the BIO label set, one label per line,
	// index-aligned with the model's output dimension.
	LabelsPath string
	// LibraryPath optionally overrides the onnxruntime shared library
	// location.
	LibraryPath string
}

// Runtime environment setup is process-wide in onnxruntime; it happens
// once, on first tagger construction.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// ONNXTagger labels tokens with a local token-classification model.
// The session, vocabulary and label set are loaded once at construction
// and shared across calls; inference failures on a single text degrade
// to the rule tagger instead of failing the transform.
type ONNXTagger struct {
	session  *ort.DynamicAdvancedSession
	vocab    map[string]int64
	labels   []string
	fallback *RuleTagger
}

// NewONNXTagger loads the model, vocabulary and labels. Construction
// errors are returned to the caller, which decides whether to fall back.
func NewONNXTagger(cfg ONNXConfig) (*ONNXTagger, error) {
	if cfg.ModelPath == "" {
		return nil, types.NewAppError(types.ErrConfig, "model path not configured", nil)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, types.NewAppError(types.ErrModel, "model file not found", err)
	}

	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, types.NewAppError(types.ErrModel, "failed to initialize onnxruntime", err)
	}

	vocab, err := loadVocab(cfg.VocabPath)
	if err != nil {
		return nil, err
	}
	labels, err := loadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrModel, "failed to create inference session", err)
	}

	logger.Info("ONNX tagger initialized",
		logger.String("model", cfg.ModelPath),
		logger.Int("vocabSize", len(vocab)),
		logger.Int("labelCount", len(labels)))

	return &ONNXTagger{
		session:  session,
		vocab:    vocab,
		labels:   labels,
		fallback: NewRuleTagger(),
	}, nil
}

// Close releases the inference session.
func (t *ONNXTagger) Close() error {
	if t.session != nil {
		return t.session.Destroy()
	}
	return nil
}

// Classify implements Tagger.
func (t *ONNXTagger) Classify(ctx context.Context, text string) ([]types.Token, error) {
	tokens := Tokenize(text)

	inputIDs, pieceWord := t.encode(tokens)
	if len(inputIDs) <= 2 {
		// Nothing but [CLS] and [SEP]: no word tokens to label.
		return tokens, nil
	}

	categories, err := t.run(inputIDs, pieceWord, len(tokens))
	if err != nil {
		logger.Warn("inference failed, falling back to rule tagger", logger.Err(err))
		return t.fallback.Classify(ctx, text)
	}

	for i := range tokens {
		if tokens[i].Category == types.TokenWord && categories[i].Protected() {
			tokens[i].Category = categories[i]
		}
	}

	return tokens, nil
}

// encode produces the wordpiece id sequence for the word tokens,
// bracketed by [CLS]/[SEP], plus a parallel map from piece position to
// the index of the token that piece starts (-1 for specials and
// continuation pieces).
func (t *ONNXTagger) encode(tokens []types.Token) ([]int64, []int) {
	inputIDs := []int64{t.vocabID(clsToken)}
	pieceWord := []int{-1}

	for i, tok := range tokens {
		if tok.Category != types.TokenWord && tok.Category != types.TokenUppercase {
			continue
		}
		pieces := t.wordpieces(tok.Text)
		for j, id := range pieces {
			if len(inputIDs) >= maxSequenceLength-1 {
				break
			}
			inputIDs = append(inputIDs, id)
			if j == 0 {
				pieceWord = append(pieceWord, i)
			} else {
				pieceWord = append(pieceWord, -1)
			}
		}
	}

	inputIDs = append(inputIDs, t.vocabID(sepToken))
	pieceWord = append(pieceWord, -1)
	return inputIDs, pieceWord
}

// wordpieces splits a word into greedy longest-match vocabulary pieces,
// lowercased the way uncased NER checkpoints expect.
func (t *ONNXTagger) wordpieces(word string) []int64 {
	w := strings.ToLower(word)
	var ids []int64

	start := 0
	for start < len(w) {
		end := len(w)
		found := int64(-1)
		for end > start {
			sub := w[start:end]
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int64{t.vocabID(unkToken)}
		}
		ids = append(ids, found)
		start = end
	}

	return ids
}

// vocabID looks up a token id, mapping unknowns to [UNK].
func (t *ONNXTagger) vocabID(token string) int64 {
	if id, ok := t.vocab[token]; ok {
		return id
	}
	return t.vocab[unkToken]
}

// run executes the session and reduces piece-level logits to word-level
// entity categories. The first piece of each word decides its label.
func (t *ONNXTagger) run(inputIDs []int64, pieceWord []int, tokenCount int) ([]types.TokenCategory, error) {
	seqLen := int64(len(inputIDs))
	shape := ort.NewShape(1, seqLen)

	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, types.NewAppError(types.ErrModel, "failed to create input tensor", err)
	}
	defer idsTensor.Destroy()

	attention := make([]int64, len(inputIDs))
	for i := range attention {
		attention[i] = 1
	}
	maskTensor, err := ort.NewTensor(shape, attention)
	if err != nil {
		return nil, types.NewAppError(types.ErrModel, "failed to create attention tensor", err)
	}
	defer maskTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := t.session.Run([]ort.Value{idsTensor, maskTensor}, outputs); err != nil {
		return nil, types.NewAppError(types.ErrModel, "inference run failed", err)
	}
	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, types.NewAppError(types.ErrModel, "unexpected output tensor type", nil)
	}
	defer logits.Destroy()

	data := logits.GetData()
	classes := len(t.labels)
	if classes == 0 || len(data) < len(inputIDs)*classes {
		return nil, types.NewAppErrorWithDetails(types.ErrModel,
			"output shape mismatch", "logits smaller than sequence*labels", nil)
	}

	categories := make([]types.TokenCategory, tokenCount)
	for p, word := range pieceWord {
		if word < 0 {
			continue
		}
		row := data[p*classes : (p+1)*classes]
		best := 0
		for c := 1; c < classes; c++ {
			if row[c] > row[best] {
				best = c
			}
		}
		categories[word] = labelCategory(t.labels[best])
	}

	return categories, nil
}

// labelCategory maps a BIO label to a token category.
func labelCategory(label string) types.TokenCategory {
	l := strings.TrimPrefix(strings.TrimPrefix(label, "B-"), "I-")
	switch strings.ToUpper(l) {
	case "PER", "PERSON":
		return types.TokenPerson
	case "ORG", "ORGANIZATION":
		return types.TokenOrganization
	case "LOC", "LOCATION", "GPE":
		return types.TokenLocation
	default:
		return types.TokenWord
	}
}

// loadVocab reads a wordpiece vocabulary file, one token per line; the
// line number is the token id.
func loadVocab(path string) (map[string]int64, error) {
	if path == "" {
		return nil, types.NewAppError(types.ErrConfig, "vocab path not configured", nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrModel, "failed to open vocab file", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r")] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, types.NewAppError(types.ErrModel, "failed to read vocab file", err)
	}
	if _, ok := vocab[unkToken]; !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrModel,
			"invalid vocabulary", "missing "+unkToken, nil)
	}
	return vocab, nil
}

// loadLabels reads the label set, one label per line.
func loadLabels(path string) ([]string, error) {
	if path == "" {
		return nil, types.NewAppError(types.ErrConfig, "labels path not configured", nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrModel, "failed to open labels file", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, types.NewAppError(types.ErrModel, "failed to read labels file", err)
	}
	return labels, nil
}
