package adapter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/paddyhq/paddy/pkg/adapter"
	"github.com/paddyhq/paddy/pkg/agent"
	"github.com/paddyhq/paddy/pkg/logger"
	"github.com/paddyhq/paddy/pkg/wire"
)

func msg(role, text string) wire.ChatMessage {
	return wire.ChatMessage{Role: role, Content: wire.NewTextContent(text)}
}

var _ = Describe("Adapter", func() {
	var a *adapter.Adapter

	BeforeEach(func() {
		a = adapter.New(logger.Nop())
	})

	Describe("Convert", func() {
		It("uses a lone user message as the prompt with empty history", func() {
			prompt, history, err := a.Convert([]wire.ChatMessage{
				msg(wire.RoleUser, "hello"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(Equal("hello"))
			Expect(history).To(BeEmpty())
		})

		It("extracts the last user message and keeps prior turns in order", func() {
			prompt, history, err := a.Convert([]wire.ChatMessage{
				msg(wire.RoleUser, "A"),
				msg(wire.RoleAssistant, "B"),
				msg(wire.RoleUser, "C"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(Equal("C"))
			Expect(history).To(Equal([]agent.Turn{
				agent.UserTurn("A"),
				agent.AssistantTurn("B"),
			}))
		})

		It("drops system messages without adding them to history", func() {
			prompt, history, err := a.Convert([]wire.ChatMessage{
				msg(wire.RoleSystem, "you are a pirate"),
				msg(wire.RoleUser, "A"),
				msg(wire.RoleSystem, "actually a ninja"),
				msg(wire.RoleAssistant, "B"),
				msg(wire.RoleUser, "C"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(Equal("C"))
			Expect(history).To(Equal([]agent.Turn{
				agent.UserTurn("A"),
				agent.AssistantTurn("B"),
			}))
		})

		It("retains assistant messages that trail the prompt", func() {
			prompt, history, err := a.Convert([]wire.ChatMessage{
				msg(wire.RoleUser, "A"),
				msg(wire.RoleUser, "C"),
				msg(wire.RoleAssistant, "partial reply"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(Equal("C"))
			Expect(history).To(Equal([]agent.Turn{
				agent.UserTurn("A"),
				agent.AssistantTurn("partial reply"),
			}))
		})

		It("does not merge adjacent same-role messages", func() {
			prompt, history, err := a.Convert([]wire.ChatMessage{
				msg(wire.RoleUser, "first"),
				msg(wire.RoleUser, "second"),
				msg(wire.RoleUser, "third"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(Equal("third"))
			Expect(history).To(Equal([]agent.Turn{
				agent.UserTurn("first"),
				agent.UserTurn("second"),
			}))
		})

		It("flattens multipart content to its text parts", func() {
			parts := wire.NewPartsContent(
				wire.ContentPart{Type: "text", Text: "look at "},
				wire.ContentPart{Type: "image_url", ImageURL: &wire.ImagePayload{URL: "https://example.com/x.png"}},
				wire.ContentPart{Type: "text", Text: "this"},
			)
			prompt, _, err := a.Convert([]wire.ChatMessage{
				{Role: wire.RoleUser, Content: parts},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(Equal("look at this"))
		})

		It("rejects an empty messages array", func() {
			_, _, err := a.Convert(nil)
			Expect(err).To(MatchError(adapter.ErrEmptyMessages))
		})

		It("rejects a transcript with no user message", func() {
			_, _, err := a.Convert([]wire.ChatMessage{
				msg(wire.RoleSystem, "instructions"),
				msg(wire.RoleAssistant, "hi"),
			})
			Expect(err).To(MatchError(adapter.ErrNoUserMessage))
		})
	})
})
