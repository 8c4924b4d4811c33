package trigger_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/marchfault/internal/march"
	"github.com/sarchlab/marchfault/internal/trigger"
)

var _ = Describe("Matcher", func() {
	var m *trigger.Matcher

	Context("with a pure value-equality trigger", func() {
		BeforeEach(func() {
			m = trigger.New(1, nil)
		})

		It("matches whenever the current value equals TV, ignoring history", func() {
			Expect(m.Observe(trigger.Record{}, 1)).To(BeTrue())
			Expect(m.Observe(trigger.Record{}, 0)).To(BeFalse())
		})
	})

	Context("with a sequence trigger", func() {
		seq := []march.Operation{{Kind: march.Write, Value: 1}}

		BeforeEach(func() {
			m = trigger.New(1, seq)
		})

		It("does not match when the window's operation differs from the sequence", func() {
			Expect(m.Observe(trigger.Record{Before: 1, Op: march.Operation{Kind: march.Read, Value: 1}}, 1)).To(BeFalse())
		})

		It("matches when the window equals the sequence and the head before-value equals TV", func() {
			matched := m.Observe(trigger.Record{Before: 1, Op: march.Operation{Kind: march.Write, Value: 1}}, 1)
			Expect(matched).To(BeTrue())
		})

		It("does not match when the head before-value differs from TV", func() {
			matched := m.Observe(trigger.Record{Before: 0, Op: march.Operation{Kind: march.Write, Value: 1}}, 1)
			Expect(matched).To(BeFalse())
		})

		It("slides the window, keeping only the most recent |S| records", func() {
			Expect(m.Observe(trigger.Record{Before: 0, Op: march.Operation{Kind: march.Read, Value: 0}}, 0)).To(BeFalse())
			matched := m.Observe(trigger.Record{Before: 1, Op: march.Operation{Kind: march.Write, Value: 1}}, 1)
			Expect(matched).To(BeTrue())
		})

		It("clears the window on Reset", func() {
			// A one-operation window refills on every observation, so the
			// clear is observed through a two-operation trigger: without the
			// Reset, W1 then R1 would match.
			m = trigger.New(0, []march.Operation{{Kind: march.Write, Value: 1}, {Kind: march.Read, Value: 1}})
			m.Observe(trigger.Record{Before: 0, Op: march.Operation{Kind: march.Write, Value: 1}}, 1)
			m.Reset()
			matched := m.Observe(trigger.Record{Before: 1, Op: march.Operation{Kind: march.Read, Value: 1}}, 1)
			Expect(matched).To(BeFalse())
		})
	})

	Context("with a two-operation sequence", func() {
		seq := []march.Operation{
			{Kind: march.Write, Value: 1},
			{Kind: march.Read, Value: 1},
		}

		BeforeEach(func() {
			m = trigger.New(0, seq)
		})

		It("requires op-for-op equality across the whole window", func() {
			Expect(m.Observe(trigger.Record{Before: 0, Op: march.Operation{Kind: march.Write, Value: 1}}, 1)).To(BeFalse())
			matched := m.Observe(trigger.Record{Before: 1, Op: march.Operation{Kind: march.Read, Value: 1}}, 1)
			Expect(matched).To(BeTrue())
		})
	})
})
