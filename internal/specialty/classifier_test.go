package specialty

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		name    string
		symptom string
		want    string
	}{
		{name: "heart keyword", symptom: "đau tim dữ dội", want: "Tim mạch"},
		{name: "blood pressure keyword", symptom: "huyết áp tăng cao", want: "Tim mạch"},
		{name: "upper case input", symptom: "ĐAU TIM", want: "Tim mạch"},
		{name: "bone keyword", symptom: "gãy xương tay", want: "Cơ xương khớp"},
		{name: "back pain phrase", symptom: "đau lưng khi ngồi lâu", want: "Cơ xương khớp"},
		{name: "throat keyword", symptom: "viêm họng kéo dài", want: "Tai mũi họng"},
		{name: "skin keyword", symptom: "da nổi mẩn đỏ", want: "Da liễu"},
		{name: "itch keyword", symptom: "ngứa toàn thân", want: "Da liễu"},
		{name: "tooth keyword", symptom: "răng đau khi nhai", want: "Răng hàm mặt"},
		{name: "no keyword match", symptom: "mệt mỏi chán ăn", want: GeneralMedicine},
		{name: "empty input", symptom: "", want: GeneralMedicine},
		{name: "blank input", symptom: "   ", want: GeneralMedicine},
		// "tai" outranks "da": rules are evaluated top to bottom.
		{name: "rule order wins", symptom: "ngứa trong tai", want: "Tai mũi họng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeywordClassifier{}.Classify(context.Background(), tt.symptom)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type stubClassifier struct {
	label string
	err   error
	calls int
}

func (s *stubClassifier) Classify(ctx context.Context, symptom string) (string, error) {
	s.calls++
	return s.label, s.err
}

type hangingClassifier struct{}

func (hangingClassifier) Classify(ctx context.Context, symptom string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestDegradingUsesPrimaryResult(t *testing.T) {
	primary := &stubClassifier{label: "Tim mạch"}
	c := NewDegrading(primary, KeywordClassifier{}, time.Second, nil)

	got, err := c.Classify(context.Background(), "anything at all")
	require.NoError(t, err)
	assert.Equal(t, "Tim mạch", got)
	assert.Equal(t, 1, primary.calls)
}

func TestDegradingFallsBackOnError(t *testing.T) {
	primary := &stubClassifier{err: errors.New("upstream down")}
	c := NewDegrading(primary, KeywordClassifier{}, time.Second, nil)

	got, err := c.Classify(context.Background(), "đau tim")
	require.NoError(t, err)
	assert.Equal(t, "Tim mạch", got)
}

func TestDegradingFallsBackOnEmptyResult(t *testing.T) {
	primary := &stubClassifier{label: "   "}
	c := NewDegrading(primary, KeywordClassifier{}, time.Second, nil)

	got, err := c.Classify(context.Background(), "không rõ triệu chứng")
	require.NoError(t, err)
	assert.Equal(t, GeneralMedicine, got)
}

func TestDegradingFallsBackOnTimeout(t *testing.T) {
	c := NewDegrading(hangingClassifier{}, KeywordClassifier{}, 10*time.Millisecond, nil)

	start := time.Now()
	got, err := c.Classify(context.Background(), "huyết áp cao")
	require.NoError(t, err)
	assert.Equal(t, "Tim mạch", got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDegradingWithoutPrimary(t *testing.T) {
	c := NewDegrading(nil, KeywordClassifier{}, time.Second, nil)

	got, err := c.Classify(context.Background(), "đau khớp")
	require.NoError(t, err)
	assert.Equal(t, "Cơ xương khớp", got)
}

func TestDegradingTrimsPrimaryResult(t *testing.T) {
	primary := &stubClassifier{label: "  Da liễu\n"}
	c := NewDegrading(primary, KeywordClassifier{}, time.Second, nil)

	got, err := c.Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Da liễu", got)
}
