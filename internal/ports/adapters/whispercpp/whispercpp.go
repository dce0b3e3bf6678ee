package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/lyricgen/internal/types"
)

type Adapter struct {
	bin      string
	model    string
	language string
}

func New(binPath, modelPath, language string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, language: language}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-ojf",
		"-of", outPrefix,
	}
	if a.language != "" {
		args = append(args, "-l", a.language)
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return parseFullJSON(jb)
}

type fullJSON struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets offsets `json:"offsets"`
		Text    string  `json:"text"`
		Tokens  []token `json:"tokens"`
	} `json:"transcription"`
}

type offsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type token struct {
	// Raw because whisper.cpp may cut a multi-byte character across
	// tokens, which encoding/json would replace with U+FFFD.
	Text    json.RawMessage `json:"text"`
	Offsets offsets         `json:"offsets"`
}

func parseFullJSON(b []byte) (types.Transcript, error) {
	var fj fullJSON
	if err := json.Unmarshal(b, &fj); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper.cpp json: %w", err)
	}
	tr := types.Transcript{Language: fj.Result.Language}
	for _, s := range fj.Transcription {
		seg := types.Segment{
			Start: ms(s.Offsets.From),
			End:   ms(s.Offsets.To),
			Text:  strings.TrimSpace(s.Text),
		}
		words, err := wordsFromTokens(s.Tokens)
		if err != nil {
			return types.Transcript{}, err
		}
		seg.Words = words
		tr.Segments = append(tr.Segments, seg)
	}
	return tr, nil
}

// wordsFromTokens merges BPE tokens into words. Latin words start at a
// token with a leading space; every Han character is a word of its own.
func wordsFromTokens(toks []token) ([]types.Word, error) {
	var (
		out []types.Word
		cur *types.Word
	)
	for _, tk := range toks {
		text, err := unquoteRaw(tk.Text)
		if err != nil {
			return nil, fmt.Errorf("whisper.cpp token: %w", err)
		}
		if isSpecial(text) || text == "" {
			continue
		}
		if cur == nil || startsWord(cur.Word, text) {
			if cur != nil {
				out = append(out, finish(*cur))
			}
			cur = &types.Word{Start: ms(tk.Offsets.From), End: ms(tk.Offsets.To), Word: text}
			continue
		}
		cur.Word += text
		cur.End = ms(tk.Offsets.To)
	}
	if cur != nil {
		out = append(out, finish(*cur))
	}
	// Drop words that were only whitespace or never completed.
	kept := out[:0]
	for _, w := range out {
		if w.Word != "" {
			kept = append(kept, w)
		}
	}
	return kept, nil
}

func startsWord(prev, tok string) bool {
	if !utf8.ValidString(prev) {
		return false
	}
	if strings.HasPrefix(tok, " ") {
		return true
	}
	r, size := utf8.DecodeRuneInString(tok)
	if r == utf8.RuneError && size <= 1 {
		// First bytes of a 3 or 4 byte character, CJK in practice.
		return tok[0] >= 0xE0
	}
	if unicode.Is(unicode.Han, r) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(prev)
	return unicode.Is(unicode.Han, last)
}

func finish(w types.Word) types.Word {
	w.Word = strings.TrimSpace(strings.ToValidUTF8(w.Word, ""))
	return w
}

func isSpecial(s string) bool {
	return strings.HasPrefix(s, "[_") && strings.HasSuffix(s, "]")
}

// unquoteRaw decodes a JSON string literal without validating UTF-8.
func unquoteRaw(raw json.RawMessage) (string, error) {
	s := string(raw)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("not a json string: %s", s)
	}
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape in %q", s)
		}
		switch s[i] {
		case '"', '\\', '/':
			b.WriteByte(s[i])
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			// Escaped code points are always complete; let encoding/json do them.
			if i+5 > len(s) {
				return "", fmt.Errorf("short unicode escape in %q", s)
			}
			var r string
			if err := json.Unmarshal([]byte(`"\u`+s[i+1:i+5]+`"`), &r); err != nil {
				return "", err
			}
			b.WriteString(r)
			i += 4
		default:
			return "", fmt.Errorf("invalid escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

func ms(v int64) float64 { return float64(v) / 1000 }
