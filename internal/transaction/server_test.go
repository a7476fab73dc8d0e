package transaction

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		scanner     *mockScanner
		service     *Service
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server := NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		for _, method := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
			ghttpServer.RouteToHandler(method, regexp.MustCompile(`.*`), server.ServeHTTP)
		}
	}

	do := func(method, path string, body io.Reader, contentType string) *http.Response {
		req, err := http.NewRequest(method, ghttpServer.URL()+path, body)
		Expect(err).NotTo(HaveOccurred())
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if auth.Username != "" {
			req.SetBasicAuth(auth.Username, auth.Password)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(resp.Body.Close)
		return resp
	}

	decode := func(resp *http.Response, v any) {
		Expect(json.NewDecoder(resp.Body).Decode(v)).To(Succeed())
	}

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		scanner = newMockScanner()
		idGen := &mockIDGenerator{ids: []string{"id-1", "id-2", "id-3"}}
		timeSrc := &mockTimeSource{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, scanner, storage, time.Second, idGen, timeSrc)
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleIndex", func() {
		It("should return the HTML interface", func() {
			resp := do("GET", "/", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/html"))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("Finance Tracker"))
		})

		It("should reject other methods", func() {
			resp := do("POST", "/", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Describe("static assets", func() {
		It("should serve the stylesheet and script", func() {
			Expect(do("GET", "/static/app.css", nil, "").Header.Get("Content-Type")).To(ContainSubstring("text/css"))
			Expect(do("GET", "/static/app.js", nil, "").Header.Get("Content-Type")).To(ContainSubstring("javascript"))
		})
	})

	Describe("CORS", func() {
		It("should answer preflight requests", func() {
			resp := do("OPTIONS", "/api/transactions", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("PUT"))
		})

		It("should set headers on regular responses", func() {
			resp := do("GET", "/api/categories", nil, "")
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "ana", Password: "s3nha"}
			setupServer()
		})

		It("should accept the right credentials", func() {
			resp := do("GET", "/api/categories", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("should reject wrong credentials", func() {
			auth.Password = "wrong"
			resp := do("GET", "/api/categories", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))

			var body errorResponse
			decode(resp, &body)
			Expect(body.Error).To(Equal("Acesso não autorizado"))
		})
	})

	Describe("handleCreateTransaction", func() {
		When("the input is valid", func() {
			It("should return 201 with the transaction", func() {
				payload, _ := json.Marshal(validInputFixture())
				resp := do("POST", "/api/transactions", bytes.NewReader(payload), "application/json")
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var t Transaction
				decode(resp, &t)
				Expect(t.ID).To(Equal("id-1"))
				Expect(t.Amount).To(Equal(int64(4590)))
				Expect(db.transactions).To(HaveKey("id-1"))
			})
		})

		When("the input is invalid", func() {
			It("should return 400 with the field messages", func() {
				in := validInputFixture()
				in.Date = "2030-01-01"
				payload, _ := json.Marshal(in)
				resp := do("POST", "/api/transactions", bytes.NewReader(payload), "application/json")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

				var body errorResponse
				decode(resp, &body)
				Expect(body.Error).To(Equal("Data não pode ser futura"))
				Expect(body.Fields).To(ConsistOf(FieldError{Field: "date", Message: "Data não pode ser futura"}))
			})
		})

		When("the body is not JSON", func() {
			It("should return 400", func() {
				resp := do("POST", "/api/transactions", strings.NewReader("{"), "application/json")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk I/O error at page 42")
			})

			It("should return 500 without leaking the error", func() {
				payload, _ := json.Marshal(validInputFixture())
				resp := do("POST", "/api/transactions", bytes.NewReader(payload), "application/json")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).NotTo(ContainSubstring("page 42"))
			})
		})
	})

	Describe("transaction by ID", func() {
		BeforeEach(func() {
			db.transactions["tx-1"] = &Transaction{
				ID:          "tx-1",
				Type:        TypeExpense,
				Amount:      1000,
				Date:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Description: "Cinema",
			}
		})

		It("should get it", func() {
			resp := do("GET", "/api/transactions/tx-1", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var t Transaction
			decode(resp, &t)
			Expect(t.Description).To(Equal("Cinema"))
		})

		It("should return 404 for an unknown ID", func() {
			resp := do("GET", "/api/transactions/nope", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			var body errorResponse
			decode(resp, &body)
			Expect(body.Error).To(Equal("Recurso não encontrado"))
		})

		It("should update it", func() {
			payload, _ := json.Marshal(validInputFixture())
			resp := do("PUT", "/api/transactions/tx-1", bytes.NewReader(payload), "application/json")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(db.transactions["tx-1"].Description).To(Equal("Mercado"))
		})

		It("should delete it", func() {
			resp := do("DELETE", "/api/transactions/tx-1", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.transactions).NotTo(HaveKey("tx-1"))
		})
	})

	Describe("handleListTransactions", func() {
		It("should return an empty array when there are none", func() {
			resp := do("GET", "/api/transactions", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
		})
	})

	Describe("handleSummary", func() {
		It("should return the totals", func() {
			db.transactions["1"] = &Transaction{ID: "1", Type: TypeIncome, Amount: 300}
			db.transactions["2"] = &Transaction{ID: "2", Type: TypeExpense, Amount: 120}
			resp := do("GET", "/api/summary", nil, "")
			var sum Summary
			decode(resp, &sum)
			Expect(sum).To(Equal(Summary{Income: 300, Expenses: 120, Balance: 180, Count: 2}))
		})
	})

	Describe("handleCategories", func() {
		It("should list the categories", func() {
			resp := do("GET", "/api/categories", nil, "")
			var cats []string
			decode(resp, &cats)
			Expect(cats).To(Equal(Categories))
		})
	})

	Describe("handleScanReceipt", func() {
		upload := func(fields map[string]string, withFile bool) *http.Response {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			for k, v := range fields {
				Expect(mw.WriteField(k, v)).To(Succeed())
			}
			if withFile {
				fw, err := mw.CreateFormFile("file", "nota.jpg")
				Expect(err).NotTo(HaveOccurred())
				_, err = fw.Write([]byte("fake jpeg"))
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(mw.Close()).To(Succeed())
			return do("POST", "/api/receipts/scan", &buf, mw.FormDataContentType())
		}

		When("recognition succeeds", func() {
			It("should return the merged form", func() {
				resp := upload(map[string]string{"category": "Alimentação"}, true)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var result ScanResult
				decode(resp, &result)
				Expect(result.Notice).To(Equal(NoticeScanSucceeded))
				Expect(result.ReceiptFile).To(Equal("id-1_nota.jpg"))
				Expect(result.Form).To(Equal(Input{
					Type:        "expense",
					Amount:      "45.90",
					Date:        "2023-12-01",
					Description: "MERCADO CENTRAL",
					Category:    "Alimentação",
					ReceiptFile: "id-1_nota.jpg",
				}))
			})
		})

		When("recognition fails", func() {
			BeforeEach(func() {
				scanner.scanErr = errors.New("tesseract: failed to load por.traineddata")
			})

			It("should still return 200 with the failure notice", func() {
				resp := upload(map[string]string{"amount": "12.00"}, true)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var result ScanResult
				decode(resp, &result)
				Expect(result.Recognized).To(BeFalse())
				Expect(result.Notice).To(Equal(NoticeScanFailed))
				Expect(result.Form.Amount).To(Equal("12.00"))
				Expect(result.Prefill.IsEmpty()).To(BeTrue())
			})
		})

		When("no file is sent", func() {
			It("should return 400", func() {
				resp := upload(map[string]string{"amount": "12.00"}, false)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("handleGetReceiptFile", func() {
		It("should serve a stored receipt", func() {
			storage.files["id-1_nota.png"] = []byte("\x89PNG\r\n\x1a\n")
			resp := do("GET", "/api/receipts/id-1_nota.png", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))
		})

		It("should return 404 for a missing receipt", func() {
			resp := do("GET", "/api/receipts/missing.png", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
