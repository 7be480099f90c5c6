package retrieval

import (
	"context"
	"fmt"

	"github.com/ternarybob/citare/internal/interfaces"
)

// seedChunk is one fixture transcript excerpt for the offline corpus
type seedChunk struct {
	id       string
	text     string
	metadata map[string]string
}

// defaultCorpus is a small set of earnings-call excerpts so offline mode
// can exercise the full retrieve path end to end
var defaultCorpus = []seedChunk{
	{
		id:   "tsla-q2-guidance-01",
		text: "For the second quarter we are reiterating our full-year delivery guidance, though we now expect automotive gross margin to compress modestly as we ramp the new line.",
		metadata: map[string]string{
			"company": "tesla",
			"source":  "tesla-q2-earnings-call",
			"section": "guidance",
			"speaker": "cfo",
		},
	},
	{
		id:   "tsla-q2-guidance-02",
		text: "Guidance for energy storage deployments was raised for the remainder of the year; we see demand outpacing our ability to ship through Q3 and Q4.",
		metadata: map[string]string{
			"company": "tesla",
			"source":  "tesla-q2-earnings-call",
			"section": "guidance",
			"speaker": "ceo",
		},
	},
	{
		id:   "tsla-q2-qa-01",
		text: "On the pricing question, we adjusted prices in the quarter to balance demand and production, and operating margin reflects those adjustments.",
		metadata: map[string]string{
			"company": "tesla",
			"source":  "tesla-q2-earnings-call",
			"section": "qa",
			"speaker": "cfo",
		},
	},
	{
		id:   "aapl-q3-services-01",
		text: "Services revenue set another all-time record this quarter, driven by double-digit growth in advertising, cloud, and payment services.",
		metadata: map[string]string{
			"company": "apple",
			"source":  "apple-q3-earnings-call",
			"section": "prepared-remarks",
			"speaker": "ceo",
		},
	},
	{
		id:   "msft-q4-cloud-01",
		text: "Azure and other cloud services revenue grew ahead of expectations, and we expect capital expenditures to increase sequentially as we build out AI infrastructure.",
		metadata: map[string]string{
			"company": "microsoft",
			"source":  "microsoft-q4-earnings-call",
			"section": "outlook",
			"speaker": "cfo",
		},
	},
}

// SeedDefaultCorpus embeds and stores the fixture corpus when the store
// is empty. Re-running against a populated store is a no-op.
func SeedDefaultCorpus(ctx context.Context, store *LocalSearch, embedder interfaces.EmbeddingService) error {
	count, err := store.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, seed := range defaultCorpus {
		embedding, err := embedder.Embed(ctx, seed.text)
		if err != nil {
			return fmt.Errorf("failed to embed seed chunk %s: %w", seed.id, err)
		}
		if err := store.Insert(&StoredChunk{
			ID:        seed.id,
			Text:      seed.text,
			Metadata:  seed.metadata,
			Embedding: embedding,
		}); err != nil {
			return err
		}
	}

	store.logger.Info().
		Int("chunks", len(defaultCorpus)).
		Msg("Seeded default offline corpus")

	return nil
}
