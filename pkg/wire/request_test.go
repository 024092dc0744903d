package wire_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/paddyhq/paddy/pkg/wire"
)

var _ = Describe("ParseRequest", func() {
	It("parses a minimal string-content request", func() {
		req, err := wire.ParseRequest([]byte(`{
			"model": "paddy",
			"messages": [{"role": "user", "content": "Hi"}]
		}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(req.Model).To(Equal("paddy"))
		Expect(req.Messages).To(HaveLen(1))
		Expect(req.Messages[0].Role).To(Equal(wire.RoleUser))
		Expect(req.Messages[0].Text()).To(Equal("Hi"))
		Expect(req.Stream).To(BeFalse())
	})

	It("accepts sampling parameters without consuming them", func() {
		req, err := wire.ParseRequest([]byte(`{
			"model": "paddy",
			"messages": [{"role": "user", "content": "Hi"}],
			"temperature": 0.7,
			"max_tokens": 256,
			"top_p": 0.9,
			"frequency_penalty": 0.1
		}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(*req.Temperature).To(BeNumerically("~", 0.7))
		Expect(*req.MaxTokens).To(Equal(256))
	})

	It("rejects malformed JSON with a body-level validation error", func() {
		_, err := wire.ParseRequest([]byte(`{"model": `))

		var verr *wire.ValidationError
		Expect(err).To(BeAssignableToTypeOf(verr))
		Expect(err.(*wire.ValidationError).Field).To(Equal("body"))
	})

	It("rejects a missing model", func() {
		_, err := wire.ParseRequest([]byte(`{
			"messages": [{"role": "user", "content": "Hi"}]
		}`))
		Expect(err).To(HaveOccurred())
		Expect(err.(*wire.ValidationError).Field).To(Equal("model"))
	})

	It("rejects unknown roles with the offending index", func() {
		_, err := wire.ParseRequest([]byte(`{
			"model": "paddy",
			"messages": [
				{"role": "user", "content": "ok"},
				{"role": "tool", "content": "nope"}
			]
		}`))
		Expect(err).To(HaveOccurred())
		Expect(err.(*wire.ValidationError).Field).To(Equal("messages[1].role"))
	})

	It("rejects a message with absent content", func() {
		_, err := wire.ParseRequest([]byte(`{
			"model": "paddy",
			"messages": [{"role": "user"}]
		}`))
		Expect(err).To(HaveOccurred())
		Expect(err.(*wire.ValidationError).Field).To(Equal("messages[0].content"))
	})

	It("accepts an empty messages array, leaving the decision to the adapter", func() {
		req, err := wire.ParseRequest([]byte(`{"model": "paddy", "messages": []}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(req.Messages).To(BeEmpty())
	})
})

var _ = Describe("MessageContent", func() {
	Describe("normalization", func() {
		It("passes string content through unchanged", func() {
			c := wire.NewTextContent("hello vault")
			Expect(c.Text()).To(Equal("hello vault"))
		})

		It("is idempotent for already-normalized strings", func() {
			c := wire.NewTextContent("already plain")
			renormalized := wire.NewTextContent(c.Text())
			Expect(renormalized.Text()).To(Equal(c.Text()))
		})

		It("concatenates text parts in order and drops image parts", func() {
			var msg wire.ChatMessage
			err := json.Unmarshal([]byte(`{
				"role": "user",
				"content": [
					{"type": "text", "text": "foo"},
					{"type": "image_url", "image_url": {"url": "https://example.com/x.png"}},
					{"type": "text", "text": "bar"}
				]
			}`), &msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Text()).To(Equal("foobar"))
		})

		It("normalizes a single text part next to an image to just the text", func() {
			c := wire.NewPartsContent(
				wire.ContentPart{Type: "text", Text: "foo"},
				wire.ContentPart{Type: "image_url", ImageURL: &wire.ImagePayload{URL: "https://example.com/i.png"}},
			)
			Expect(c.Text()).To(Equal("foo"))
		})
	})

	It("round-trips string form through JSON", func() {
		c := wire.NewTextContent("plain")
		data, err := json.Marshal(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`"plain"`))
	})

	It("rejects null content", func() {
		var msg wire.ChatMessage
		err := json.Unmarshal([]byte(`{"role": "user", "content": null}`), &msg)
		Expect(err).To(HaveOccurred())
	})
})
