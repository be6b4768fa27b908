package rasp_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/rasp"
)

const sampleEng = `; sample motor
;  second comment line
E9 24 95 4-6-8 0.0354 0.0576 Estes
   0.046   5.000
0.235   16.000
0.500  10.000
;
1.000 0.000
`

var _ = Describe("Parse", func() {
	It("reads the header fields", func() {
		m, err := rasp.ParseString(sampleEng)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Name).To(Equal("E9"))
		Expect(m.Diameter).To(Equal(24.0))
		Expect(m.Length).To(Equal(95.0))
		Expect(m.Delays).To(Equal("4-6-8"))
		Expect(m.PropellantMass).To(Equal(0.0354))
		Expect(m.TotalMass).To(Equal(0.0576))
		Expect(m.Manufacturer).To(Equal("Estes"))
	})

	It("prepends an ignition sample at t=0", func() {
		m, err := rasp.ParseString(sampleEng)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Profile.Times()).To(Equal([]float64{0, 0.046, 0.235, 0.5, 1.0}))
		Expect(m.Profile.Thrusts()).To(Equal([]float64{0, 5, 16, 10, 0}))
	})

	It("keeps a curve that already starts at t=0", func() {
		m, err := rasp.ParseString("X 1 2 0 0.1 0.2 Acme\n0 3\n1 0\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Profile.Len()).To(Equal(2))
		Expect(m.Profile.Thrust(0)).To(Equal(3.0))
	})

	It("joins multi-word manufacturers", func() {
		m, err := rasp.ParseString("X 1 2 P 0.1 0.2 Cesaroni Technology\n0.1 3\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Manufacturer).To(Equal("Cesaroni Technology"))
	})

	DescribeTable("rejects malformed files",
		func(text string) {
			_, err := rasp.ParseString(text)
			Expect(err).To(MatchError(dynamo.ErrInvalidInput))
		},
		Entry("empty", ""),
		Entry("comments only", "; nothing here\n"),
		Entry("short header", "E9 24 95\n0.1 1\n"),
		Entry("non-numeric header", "E9 wide 95 4 0.1 0.2 Estes\n0.1 1\n"),
		Entry("no data", "E9 24 95 4 0.1 0.2 Estes\n"),
		Entry("bad thrust", "E9 24 95 4 0.1 0.2 Estes\n0.1 lots\n"),
		Entry("single column", "E9 24 95 4 0.1 0.2 Estes\n0.1\n"),
		Entry("non-monotonic time", "E9 24 95 4 0.1 0.2 Estes\n0.1 1\n0.05 2\n"),
	)
})

var _ = Describe("Catalog", func() {
	It("lists and parses every bundled motor", func() {
		names := rasp.Catalog()
		Expect(names).To(ContainElements("C6", "F15", "I200W"))
		for _, name := range names {
			m, err := rasp.Builtin(name)
			Expect(err).NotTo(HaveOccurred(), name)
			Expect(m.Profile.TotalImpulse()).To(BeNumerically(">", 0), name)
			Expect(m.Profile.Ignition()).To(Equal(0.0), name)
		}
	})

	It("reports unknown motors", func() {
		_, err := rasp.Builtin("Z9000")
		Expect(err).To(MatchError(ContainSubstring("unknown catalog motor")))
	})
})

var _ = Describe("Open", func() {
	It("resolves catalog sources", func() {
		m, err := rasp.Open(context.Background(), "catalog:C6")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Name).To(Equal("C6"))
	})

	It("reads local files", func() {
		path := filepath.Join(GinkgoT().TempDir(), "e9.eng")
		Expect(os.WriteFile(path, []byte(sampleEng), 0o644)).To(Succeed())

		m, err := rasp.Open(context.Background(), path)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Name).To(Equal("E9"))
	})

	It("fails on a missing file", func() {
		_, err := rasp.Open(context.Background(), filepath.Join(GinkgoT().TempDir(), "nope.eng"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Fetch", func() {
	var server *httptest.Server

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	It("extracts RASP data from the textarea of an HTML page", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, "<html><body><h1>E9</h1><form><textarea rows=20>%s</textarea></form></body></html>", sampleEng)
		}))

		m, err := rasp.Fetch(context.Background(), server.Client(), server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Name).To(Equal("E9"))
		Expect(m.Profile.Len()).To(Equal(5))
	})

	It("parses plain-text responses directly", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, sampleEng)
		}))

		m, err := rasp.Open(context.Background(), server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Name).To(Equal("E9"))
	})

	It("fails when the page has no textarea", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><body>not found</body></html>")
		}))

		_, err := rasp.Fetch(context.Background(), server.Client(), server.URL)
		Expect(err).To(MatchError(ContainSubstring("no <textarea>")))
	})

	It("reports HTTP errors", func() {
		server = httptest.NewServer(http.NotFoundHandler())

		_, err := rasp.Fetch(context.Background(), server.Client(), server.URL)
		Expect(err).To(MatchError(ContainSubstring("unexpected status")))
	})
})
