package main

import (
	"fmt"
	"io"
	"time"

	"demomark/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings *buildpipeline.Timings) {
	if out == nil || timings == nil {
		return
	}
	// compile и generate суммируются по всем страницам
	for _, st := range []struct {
		stage buildpipeline.Stage
		label string
	}{
		{buildpipeline.StageCompile, "compiled"},
		{buildpipeline.StageGenerate, "generated"},
		{buildpipeline.StageWrite, "wrote"},
		{buildpipeline.StageBuild, "total"},
	} {
		if timings.Has(st.stage) {
			fmt.Fprintf(out, "%s %.1f ms\n", st.label, toMillis(timings.Duration(st.stage)))
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
