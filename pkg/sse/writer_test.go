package sse

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	var buf *bytes.Buffer
	var w *Writer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		w = NewWriter(buf)
	})

	Describe("WriteData", func() {
		It("frames the payload as a data event", func() {
			Expect(w.WriteData([]byte(`{"id":"chatcmpl-abc"}`))).To(Succeed())
			Expect(buf.String()).To(Equal("data: {\"id\":\"chatcmpl-abc\"}\n\n"))
		})

		It("frames consecutive payloads as separate events", func() {
			Expect(w.WriteData([]byte("one"))).To(Succeed())
			Expect(w.WriteData([]byte("two"))).To(Succeed())
			Expect(buf.String()).To(Equal("data: one\n\ndata: two\n\n"))
		})
	})

	Describe("WriteDone", func() {
		It("emits the terminating sentinel", func() {
			Expect(w.WriteDone()).To(Succeed())
			Expect(buf.String()).To(Equal("data: [DONE]\n\n"))
		})
	})

	It("round-trips through the Reader", func() {
		Expect(w.WriteData([]byte("first"))).To(Succeed())
		Expect(w.WriteData([]byte("second"))).To(Succeed())
		Expect(w.WriteDone()).To(Succeed())

		r := NewReader(strings.NewReader(buf.String()))

		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("first"))
		Expect(ev.Done()).To(BeFalse())

		ev, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Data).To(Equal("second"))

		ev, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Done()).To(BeTrue())

		ev, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev).To(BeNil())
	})
})
