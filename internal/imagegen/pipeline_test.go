package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagen/internal/i18n"
	"imagen/internal/providers/bedrock"
	"imagen/internal/storage"
)

const (
	testBucket = "imagen-test"
	testRegion = "us-east-1"
)

type stubInvoker struct {
	calls    []bedrock.Invocation
	response []byte
	err      error
}

func (s *stubInvoker) Invoke(ctx context.Context, inv bedrock.Invocation) ([]byte, error) {
	s.calls = append(s.calls, inv)
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubInvoker) lastBody(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, s.calls, "provider was not invoked")
	var body map[string]any
	require.NoError(t, json.Unmarshal(s.calls[len(s.calls)-1].Body, &body))
	return body
}

// recordingS3 stands in for the S3 API behind a real storage.S3Store.
type recordingS3 struct {
	puts   []*s3.PutObjectInput
	failOn int
}

func (r *recordingS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if r.failOn > 0 && len(r.puts)+1 == r.failOn {
		return nil, errors.New("s3 unavailable")
	}
	if _, err := io.ReadAll(params.Body); err != nil {
		return nil, err
	}
	r.puts = append(r.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (r *recordingS3) keys() []string {
	out := make([]string, 0, len(r.puts))
	for _, p := range r.puts {
		out = append(out, *p.Key)
	}
	return out
}

func newTestPipeline(t *testing.T, inv *stubInvoker, s3api *recordingS3, bucket string) *Pipeline {
	t.Helper()
	p, err := NewPipeline(Options{
		Invoker: inv,
		Store:   storage.NewS3Store(s3api, bucket, testRegion),
		Seed:    func() int64 { return 4242 },
	})
	require.NoError(t, err)
	return p
}

func fakeImages(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("image-%d", i+1)))
	}
	return out
}

func imagesPayload(t *testing.T, images []string, guardrailAction string) []byte {
	t.Helper()
	payload := map[string]any{"images": images}
	if guardrailAction != "" {
		payload["amazon-bedrock-guardrailAction"] = guardrailAction
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}

var urlPattern = regexp.MustCompile(`^https://imagen-test\.s3\.us-east-1\.amazonaws\.com/generated_images/(stability_)?\d{8}_\d{6}_[0-9a-f]{8}_\d+\.(png|jpg)$`)

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	for _, prov := range []Provider{Generic("m"), Titan("m"), Stability("m")} {
		t.Run(prov.Name, func(t *testing.T) {
			inv := &stubInvoker{}
			s3api := &recordingS3{}
			p := newTestPipeline(t, inv, s3api, testBucket)

			_, err := p.Generate(context.Background(), prov, Request{Prompt: "   ", NumberOfImages: 1})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Prompt tidak boleh kosong", verr.Message)
			assert.Empty(t, inv.calls)
			assert.Empty(t, s3api.puts)
		})
	}
}

func TestGenerateRejectsMissingBucket(t *testing.T) {
	inv := &stubInvoker{}
	p := newTestPipeline(t, inv, &recordingS3{}, "")

	_, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "cat", NumberOfImages: 1})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "AWS_BUCKET_NAME tidak ditemukan", verr.Message)
	assert.Empty(t, inv.calls)
}

func TestGenerateRejectsMissingModel(t *testing.T) {
	inv := &stubInvoker{}
	p := newTestPipeline(t, inv, &recordingS3{}, testBucket)

	_, err := p.Generate(context.Background(), Stability(""), Request{Prompt: "cat"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "stability")
	assert.Empty(t, inv.calls)
}

func TestGenericUploadsEveryImageInOrder(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(3), "")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	res, err := p.Generate(context.Background(), Generic("amazon.titan-image-generator-v1"), Request{Prompt: "kopi susu", NumberOfImages: 3})
	require.NoError(t, err)

	assert.Equal(t, 201, res.Status)
	assert.Equal(t, "Berhasil generate 3 image", res.Message)
	assert.False(t, res.Single)
	require.Len(t, res.URLs, 3)
	for i, url := range res.URLs {
		assert.Regexp(t, urlPattern, url)
		assert.True(t, strings.HasSuffix(url, fmt.Sprintf("_%d.png", i+1)), url)
		assert.Equal(t, "image/png", *s3api.puts[i].ContentType)
	}
	require.NotNil(t, res.Metadata.NumberOfImages)
	assert.Equal(t, 3, *res.Metadata.NumberOfImages)
	assert.Equal(t, "kopi susu", res.Metadata.Prompt)

	inv0 := inv.calls[0]
	assert.Equal(t, "amazon.titan-image-generator-v1", inv0.ModelID)
	assert.False(t, inv0.Guarded)

	body := inv.lastBody(t)
	assert.Equal(t, "TEXT_IMAGE", body["taskType"])
	cfg := body["imageGenerationConfig"].(map[string]any)
	assert.EqualValues(t, 1024, cfg["width"])
	assert.EqualValues(t, 1024, cfg["height"])
	assert.EqualValues(t, 8, cfg["cfgScale"])
	assert.EqualValues(t, 0, cfg["seed"], "generic adapter must stay deterministic")
	assert.Equal(t, "standard", cfg["quality"])
	params := body["textToImageParams"].(map[string]any)
	assert.Equal(t, negativePromptBasic, params["negativeText"])
}

func TestGenericCapsImageCount(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(5), "")}
	p := newTestPipeline(t, inv, &recordingS3{}, testBucket)

	res, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "batik", NumberOfImages: 10})
	require.NoError(t, err)

	cfg := inv.lastBody(t)["imageGenerationConfig"].(map[string]any)
	assert.EqualValues(t, 5, cfg["numberOfImages"])
	assert.Len(t, res.URLs, 5)
	assert.Equal(t, 10, *res.Metadata.NumberOfImages)
}

func TestGenericRejectsNonPositiveCount(t *testing.T) {
	inv := &stubInvoker{}
	p := newTestPipeline(t, inv, &recordingS3{}, testBucket)

	_, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "batik", NumberOfImages: 0})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, inv.calls)
}

func TestTitanInputSizes(t *testing.T) {
	tests := []struct {
		size       string
		wantWidth  int
		wantHeight int
	}{
		{size: "landscape", wantWidth: 1152, wantHeight: 768},
		{size: "portrait", wantWidth: 448, wantHeight: 576},
		{size: "", wantWidth: 1152, wantHeight: 768},
	}
	for _, tc := range tests {
		t.Run("size="+tc.size, func(t *testing.T) {
			inv := &stubInvoker{response: imagesPayload(t, fakeImages(1), "")}
			p := newTestPipeline(t, inv, &recordingS3{}, testBucket)

			res, err := p.Generate(context.Background(), Titan("amazon.titan-image-generator-v2:0"), Request{Prompt: "rendang", NumberOfImages: 1, InputSize: tc.size})
			require.NoError(t, err)
			assert.Len(t, res.URLs, 1)

			cfg := inv.lastBody(t)["imageGenerationConfig"].(map[string]any)
			assert.EqualValues(t, tc.wantWidth, cfg["width"])
			assert.EqualValues(t, tc.wantHeight, cfg["height"])
			assert.Equal(t, "premium", cfg["quality"])
			assert.EqualValues(t, 4242, cfg["seed"])
			assert.True(t, inv.calls[0].Guarded)
		})
	}
}

func TestTitanRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		message string
	}{
		{name: "unknown size", req: Request{Prompt: "x", NumberOfImages: 1, InputSize: "square"}, message: "input_size harus 'landscape' atau 'portrait'"},
		{name: "too many images", req: Request{Prompt: "x", NumberOfImages: 6}, message: "Maksimal jumlah gambar yang dapat di-generate adalah 5."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := &stubInvoker{}
			p := newTestPipeline(t, inv, &recordingS3{}, testBucket)

			_, err := p.Generate(context.Background(), Titan("m"), tc.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.message, verr.Message)
			assert.Empty(t, inv.calls, "provider must not be invoked")
		})
	}
}

func TestTitanGuardrailInterventionSkipsUploads(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(2), "INTERVENED")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	res, err := p.Generate(context.Background(), Titan("m"), Request{Prompt: "x", NumberOfImages: 2})

	assert.Nil(t, res)
	var refusal *RefusalError
	require.ErrorAs(t, err, &refusal)
	assert.True(t, refusal.Intervened)
	assert.Equal(t, "Maaf, Prompt yang anda gunakan melanggar kebijakan kami", refusal.Message)
	assert.Empty(t, s3api.puts)
}

func TestStabilityGuardrailIntervention(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, nil, "INTERVENED")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	_, err := p.Generate(context.Background(), Stability("m"), Request{Prompt: "x"})

	var refusal *RefusalError
	require.ErrorAs(t, err, &refusal)
	assert.True(t, refusal.Intervened)
	assert.Empty(t, s3api.puts)
}

func TestStabilityEmptyResponseHidesPayload(t *testing.T) {
	inv := &stubInvoker{response: []byte(`{"images":[],"finish_reasons":["Filter reason: output image"],"seed":"1"}`)}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	_, err := p.Generate(context.Background(), Stability("m"), Request{Prompt: "x"})

	var refusal *RefusalError
	require.ErrorAs(t, err, &refusal)
	assert.False(t, refusal.Intervened)
	assert.NotContains(t, refusal.Message, "finish_reasons")
	assert.Equal(t, i18n.Sprintf(i18n.LocaleID, i18n.MsgNoImageReturned), refusal.Message)
	assert.Empty(t, s3api.puts)
}

func TestStabilityImagesWinOverGuardrailFlag(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(1), "INTERVENED")}
	p := newTestPipeline(t, inv, &recordingS3{}, testBucket)

	res, err := p.Generate(context.Background(), Stability("m"), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Len(t, res.URLs, 1)
}

func TestGenericIgnoresGuardrailFlagWhenImagesReturned(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(2), "INTERVENED")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	res, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "x", NumberOfImages: 2})

	require.NoError(t, err)
	assert.Len(t, res.URLs, 2)
	assert.Len(t, s3api.puts, 2)
}

func TestGenericEmptyResponseIsRefused(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, nil, "")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	_, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "x", NumberOfImages: 1})

	var refusal *RefusalError
	require.ErrorAs(t, err, &refusal)
	assert.Empty(t, s3api.puts)
}

func TestStabilityJPEG(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(2), "")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	res, err := p.Generate(context.Background(), Stability("stability.stable-image-core-v1:0"), Request{Prompt: "es teh", OutputFormat: "jpeg"})
	require.NoError(t, err)

	assert.True(t, res.Single)
	assert.Equal(t, "Berhasil generate image", res.Message)
	require.Len(t, res.URLs, 1, "only the first image is kept")
	assert.Regexp(t, urlPattern, res.URLs[0])
	require.Len(t, s3api.puts, 1)
	assert.True(t, strings.HasPrefix(*s3api.puts[0].Key, "generated_images/stability_"))
	assert.True(t, strings.HasSuffix(*s3api.puts[0].Key, "_1.jpg"))
	assert.Equal(t, "image/jpeg", *s3api.puts[0].ContentType)
	assert.Equal(t, "jpeg", res.Metadata.OutputFormat)
	assert.Nil(t, res.Metadata.NumberOfImages)

	body := inv.lastBody(t)
	assert.Equal(t, "3:2", body["aspect_ratio"])
	assert.Equal(t, "jpeg", body["output_format"])
	assert.EqualValues(t, 4242, body["seed"])
	assert.True(t, inv.calls[0].Guarded)
}

func TestStabilityDefaultsToPNG(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(1), "")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	res, err := p.Generate(context.Background(), Stability("m"), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "png", res.Metadata.OutputFormat)
	assert.True(t, strings.HasSuffix(*s3api.puts[0].Key, ".png"))
}

func TestStabilityRejectsUnknownFormat(t *testing.T) {
	inv := &stubInvoker{}
	p := newTestPipeline(t, inv, &recordingS3{}, testBucket)

	_, err := p.Generate(context.Background(), Stability("m"), Request{Prompt: "x", OutputFormat: "gif"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "output_format harus 'png' atau 'jpeg'", verr.Message)
	assert.Empty(t, inv.calls)
}

func TestSuccessiveCallsUseDistinctKeys(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(1), "")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	first, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "same", NumberOfImages: 1})
	require.NoError(t, err)
	second, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "same", NumberOfImages: 1})
	require.NoError(t, err)

	assert.NotEqual(t, first.Keys[0], second.Keys[0])
	assert.Len(t, s3api.keys(), 2)
}

func TestUploadFailureMidLoop(t *testing.T) {
	inv := &stubInvoker{response: imagesPayload(t, fakeImages(3), "")}
	s3api := &recordingS3{failOn: 2}
	p := newTestPipeline(t, inv, s3api, testBucket)

	res, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "x", NumberOfImages: 3})

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 2, uerr.Index)
	assert.Equal(t, 1, uerr.Stored)
	require.NotNil(t, res)
	assert.Equal(t, 500, res.Status)
	assert.Len(t, res.URLs, 1)
	assert.Len(t, s3api.puts, 1, "exactly one object stored before the failure")
}

func TestUndecodableImageAbortsLoop(t *testing.T) {
	images := append(fakeImages(1), "%%%not-base64%%%")
	inv := &stubInvoker{response: imagesPayload(t, images, "")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	_, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "x", NumberOfImages: 2})

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Len(t, s3api.puts, 1)
}

func TestProviderFailureIsUnexpected(t *testing.T) {
	inv := &stubInvoker{err: errors.New("ThrottlingException: slow down")}
	s3api := &recordingS3{}
	p := newTestPipeline(t, inv, s3api, testBucket)

	res, err := p.Generate(context.Background(), Titan("m"), Request{Prompt: "x", NumberOfImages: 1})

	assert.Nil(t, res)
	require.Error(t, err)
	var verr *ValidationError
	var refusal *RefusalError
	assert.False(t, errors.As(err, &verr))
	assert.False(t, errors.As(err, &refusal))
	assert.Contains(t, err.Error(), "slow down")
	assert.Empty(t, s3api.puts)
}

func TestMalformedProviderPayload(t *testing.T) {
	inv := &stubInvoker{response: []byte(`not json`)}
	p := newTestPipeline(t, inv, &recordingS3{}, testBucket)

	_, err := p.Generate(context.Background(), Generic("m"), Request{Prompt: "x", NumberOfImages: 1})
	assert.ErrorContains(t, err, "decode response")
}

func TestMessagesFollowContextLocale(t *testing.T) {
	inv := &stubInvoker{}
	p := newTestPipeline(t, inv, &recordingS3{}, testBucket)
	ctx := i18n.ContextWithLocale(context.Background(), i18n.LocaleEN)

	_, err := p.Generate(ctx, Generic("m"), Request{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Prompt must not be empty", verr.Message)
}

func TestRandomSeedRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		seed := RandomSeed()
		require.GreaterOrEqual(t, seed, int64(0))
		require.LessOrEqual(t, seed, int64(maxSeed))
	}
}

func TestNewPipelineRequiresCollaborators(t *testing.T) {
	_, err := NewPipeline(Options{Store: storage.NewS3Store(&recordingS3{}, testBucket, testRegion)})
	assert.Error(t, err)
	_, err = NewPipeline(Options{Invoker: &stubInvoker{}})
	assert.Error(t, err)
}
