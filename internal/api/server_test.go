package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/darmiel/rtcmint/internal/api/middleware"
	"github.com/darmiel/rtcmint/internal/assets"
	"github.com/darmiel/rtcmint/internal/secrets"
	"github.com/darmiel/rtcmint/internal/service"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newHandler(resolver secrets.MapResolver, videoDir string) http.Handler {
	bundle := secrets.Load(resolver, secrets.Names()...)
	svc := service.NewTokenService(bundle, service.WithClock(func() time.Time { return fixedNow }))

	store, err := assets.NewDirStore(videoDir)
	Expect(err).NotTo(HaveOccurred())

	return NewServer(svc, assets.NewServer(assets.VideoClass(store))).Routes()
}

func do(h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(rr *httptest.ResponseRecorder) map[string]any {
	var m map[string]any
	Expect(json.Unmarshal(rr.Body.Bytes(), &m)).To(Succeed(), "body: %s", rr.Body.String())
	return m
}

var _ = Describe("Server", func() {
	var (
		handler  http.Handler
		video    []byte
		resolver secrets.MapResolver
	)

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		video = make([]byte, 1000)
		for i := range video {
			video[i] = byte(i % 251)
		}
		Expect(os.WriteFile(filepath.Join(dir, "clip.mp4"), video, 0o644)).To(Succeed())

		resolver = secrets.MapResolver{
			secrets.AgoraAppID:          "970ca35de60c44645bbae8a215061b33",
			secrets.AgoraAppCertificate: "5cfd2fd1755d40ecb72977518be15d3b",
			secrets.TwilioAccountSID:    "ACtest",
			secrets.TwilioAPIKey:        "SKtest",
			secrets.TwilioAPISecret:     "twilio-secret",
			secrets.ZoomSDKKey:          "zoom-key",
			secrets.ZoomSDKSecret:       "zoom-secret",
		}
		handler = newHandler(resolver, dir)
	})

	Describe("token issuance", func() {
		type issueCase struct {
			path       string
			body       string
			expectHTTP int
			expectKeys []string
			expectErr  string
		}

		DescribeTable("POST",
			func(tc issueCase) {
				rr := do(handler, http.MethodPost, tc.path, tc.body, nil)
				Expect(rr.Code).To(Equal(tc.expectHTTP), "body: %s", rr.Body.String())
				Expect(rr.Header().Get("Content-Type")).To(Equal("application/json"))

				body := decodeBody(rr)
				if tc.expectErr != "" {
					Expect(body).To(HaveKeyWithValue("error", tc.expectErr))
					Expect(body).To(HaveKeyWithValue("correlation_id", rr.Header().Get(middleware.CorrelationIDHeader)))
					Expect(body).NotTo(HaveKey("token"))
					return
				}
				Expect(body).To(HaveLen(len(tc.expectKeys)))
				for _, k := range tc.expectKeys {
					Expect(body).To(HaveKey(k))
				}
			},

			Entry("agora", issueCase{
				path:       "/tokens/agora",
				body:       `{"channelName":"room-1","uid":"42"}`,
				expectHTTP: http.StatusOK,
				expectKeys: []string{"token", "appId"},
			}),
			Entry("agora via legacy route", issueCase{
				path:       "/api/agora-token",
				body:       `{"channelName":"room-1","uid":0,"role":"subscriber"}`,
				expectHTTP: http.StatusOK,
				expectKeys: []string{"token", "appId"},
			}),
			Entry("twilio", issueCase{
				path:       "/tokens/twilio",
				body:       `{"identity":"alice"}`,
				expectHTTP: http.StatusOK,
				expectKeys: []string{"token"},
			}),
			Entry("zoom", issueCase{
				path:       "/api/zoom-token",
				body:       `{"sessionName":"s","userIdentity":"u","role":1}`,
				expectHTTP: http.StatusOK,
				expectKeys: []string{"token", "expiresAt", "userIdentity", "sessionName", "role"},
			}),
			Entry("unknown provider", issueCase{
				path:       "/api/foo-token",
				body:       `{}`,
				expectHTTP: http.StatusNotFound,
				expectErr:  "Unsupported provider",
			}),
			Entry("malformed json", issueCase{
				path:       "/tokens/agora",
				body:       `{"channelName":`,
				expectHTTP: http.StatusBadRequest,
				expectErr:  "Invalid JSON body",
			}),
			Entry("empty body", issueCase{
				path:       "/tokens/twilio",
				expectHTTP: http.StatusBadRequest,
				expectErr:  "Invalid JSON body",
			}),
			Entry("missing field", issueCase{
				path:       "/tokens/agora",
				body:       `{"uid":1}`,
				expectHTTP: http.StatusBadRequest,
				expectErr:  "channelName is required",
			}),
			Entry("invalid zoom role", issueCase{
				path:       "/tokens/zoom",
				body:       `{"sessionName":"s","userIdentity":"u","role":2}`,
				expectHTTP: http.StatusBadRequest,
				expectErr:  "role must be 0 (attendee) or 1 (host)",
			}),
		)

		It("reports missing secrets by name only", func() {
			delete(resolver, secrets.AgoraAppCertificate)
			h := newHandler(resolver, GinkgoT().TempDir())

			rr := do(h, http.MethodPost, "/tokens/agora", `{"channelName":"c","uid":1}`, nil)
			Expect(rr.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeBody(rr)).To(HaveKeyWithValue("error", "AGORA_APP_CERTIFICATE is not configured"))
			Expect(rr.Body.String()).NotTo(ContainSubstring("5cfd2fd1"))
		})

		It("rejects other methods", func() {
			rr := do(handler, http.MethodGet, "/tokens/agora", "", nil)
			Expect(rr.Code).To(Equal(http.StatusMethodNotAllowed))
		})

		It("echoes the correlation id", func() {
			rr := do(handler, http.MethodPost, "/tokens/twilio", `{"identity":"a"}`,
				map[string]string{middleware.CorrelationIDHeader: "req-123"})
			Expect(rr.Header().Get(middleware.CorrelationIDHeader)).To(Equal("req-123"))
		})
	})

	Describe("assets", func() {
		It("serves the whole file", func() {
			rr := do(handler, http.MethodGet, "/assets/video/clip.mp4", "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Header().Get("Content-Type")).To(Equal("video/mp4"))
			Expect(rr.Header().Get("Accept-Ranges")).To(Equal("bytes"))
			Expect(rr.Header().Get("Content-Length")).To(Equal("1000"))
			Expect(rr.Header().Get("Cache-Control")).To(Equal(assets.DefaultCacheControl))
			Expect(rr.Body.Bytes()).To(Equal(video))
		})

		DescribeTable("ranges",
			func(rangeHeader string, status int, contentRange string, start, end int) {
				rr := do(handler, http.MethodGet, "/assets/video/clip.mp4", "",
					map[string]string{"Range": rangeHeader})
				Expect(rr.Code).To(Equal(status))
				Expect(rr.Header().Get("Content-Range")).To(Equal(contentRange))
				if status == http.StatusRequestedRangeNotSatisfiable {
					Expect(rr.Body.Len()).To(BeZero())
					return
				}
				Expect(rr.Body.Bytes()).To(Equal(video[start:end]))
			},
			Entry("closed", "bytes=100-199", http.StatusPartialContent, "bytes 100-199/1000", 100, 200),
			Entry("open ended", "bytes=995-", http.StatusPartialContent, "bytes 995-999/1000", 995, 1000),
			Entry("outside", "bytes=2000-3000", http.StatusRequestedRangeNotSatisfiable, "bytes */1000", 0, 0),
			Entry("suffix", "bytes=-10", http.StatusRequestedRangeNotSatisfiable, "bytes */1000", 0, 0),
		)

		It("sends headers only for HEAD", func() {
			rr := do(handler, http.MethodHead, "/assets/video/clip.mp4", "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Header().Get("Content-Length")).To(Equal("1000"))
			Expect(rr.Body.Len()).To(BeZero())
		})

		DescribeTable("errors",
			func(target string, status int) {
				rr := do(handler, http.MethodGet, target, "", nil)
				Expect(rr.Code).To(Equal(status))
				Expect(decodeBody(rr)).To(HaveKey("error"))
			},
			Entry("double extension", "/assets/video/x.mp4.sh", http.StatusBadRequest),
			Entry("space", "/assets/video/a%20b.mp4", http.StatusBadRequest),
			Entry("encoded traversal", "/assets/video/..%2Fsecret.mp4", http.StatusBadRequest),
			Entry("traversal", "/assets/video/../secret.mp4", http.StatusBadRequest),
			Entry("nested path", "/assets/video/sub/clip.mp4", http.StatusBadRequest),
			Entry("missing file", "/assets/video/missing.mp4", http.StatusNotFound),
			Entry("unknown class", "/assets/images/a.png", http.StatusNotFound),
			Entry("unconfigured class", "/assets/wasm/sdk.wasm", http.StatusNotFound),
		)
	})

	Describe("public routes", func() {
		It("reports health", func() {
			rr := do(handler, http.MethodGet, HealthCheckRoute, "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal("OK"))
		})

		It("describes the service", func() {
			rr := do(handler, http.MethodGet, AboutRoute, "", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			body := decodeBody(rr)
			Expect(body).To(HaveKeyWithValue("service", "rtcmint"))
			Expect(body).To(HaveKeyWithValue("providers", ConsistOf("agora", "twilio", "zoom")))
			Expect(body).To(HaveKeyWithValue("asset_classes", ConsistOf("video")))
		})

		It("answers unknown routes with json", func() {
			rr := do(handler, http.MethodGet, "/nope", "", nil)
			Expect(rr.Code).To(Equal(http.StatusNotFound))
			Expect(decodeBody(rr)).To(HaveKeyWithValue("error", "Not found"))
		})
	})

	Describe("recovery", func() {
		It("turns panics into 500", func() {
			h := middleware.RecoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("boom")
			}))
			rr := do(h, http.MethodGet, "/", "", nil)
			Expect(rr.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
