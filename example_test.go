package voiceprint_test

import (
	"context"
	"fmt"
	"log"

	"github.com/litianc/voiceprint"
	"github.com/litianc/voiceprint/audio"
	"github.com/litianc/voiceprint/backend"
	"github.com/litianc/voiceprint/testutil"
)

func Example() {
	ctx := context.Background()

	// backend.Deterministic fabricates embeddings from audio content.
	// Production deployments wrap a real speaker model instead.
	e, err := voiceprint.New(ctx, backend.Deterministic{})
	if err != nil {
		log.Fatal(err)
	}

	clip := audio.Clip{
		Samples:    testutil.Sine(220, 2, 0.5, audio.DefaultSampleRate),
		SampleRate: audio.DefaultSampleRate,
	}

	if _, err := e.Register(ctx, voiceprint.RegisterRequest{
		Name:  "Ada",
		Clips: []audio.Clip{clip},
	}); err != nil {
		log.Fatal(err)
	}

	results, err := e.Recognize(ctx, clip, 5)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("enrolled=%d\n", e.Count())
	fmt.Printf("top=%s match=%v\n", results[0].Name, results[0].IsMatch)

	// Output:
	// enrolled=1
	// top=Ada match=true
}
