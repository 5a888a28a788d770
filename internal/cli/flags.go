package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Profile string `long:"profile" description:"Path to a YAML detection profile (overrides GAZESEG_DETECTION_PROFILE)"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ServeCommand starts the HTTP service.
type ServeCommand struct {
	Addr string `long:"addr" description:"Override the listen address"`

	globals *GlobalFlags
	version string
	streams streams
}

// DetectCommand runs one detection method over a samples file.
type DetectCommand struct {
	Method string `long:"method" description:"Detection method (blink | out_of_screen)" required:"true"`
	Input  string `long:"input" description:"Samples JSON file, or - for stdin" required:"true"`
	Params string `long:"params" description:"Method parameters as a JSON object"`

	globals *GlobalFlags
	streams streams
}

// EncodeCommand converts an event table into a segmentation mask.
type EncodeCommand struct {
	Input        string `long:"input" description:"Event table JSON file, or - for stdin" required:"true"`
	NumSamples   int    `long:"num-samples" description:"Length of the mask" required:"true"`
	PadBefore    int    `long:"pad-before" description:"Samples added before every onset" default:"0"`
	PadAfter     int    `long:"pad-after" description:"Samples added after every offset" default:"0"`
	OnsetColumn  string `long:"onset-column" description:"Onset field name" default:"onset"`
	OffsetColumn string `long:"offset-column" description:"Offset field name" default:"offset"`
	Name         string `long:"name" description:"Only encode events with this label"`
	Trials       string `long:"trials" description:"JSON file of per-sample trial columns; event bounds become trial-local"`

	globals *GlobalFlags
	streams streams
}

// DecodeCommand converts a segmentation mask into an event table.
type DecodeCommand struct {
	Input  string `long:"input" description:"Segmentation JSON file, or - for stdin" required:"true"`
	Name   string `long:"name" description:"Label for the decoded events"`
	Time   string `long:"time" description:"JSON file of per-sample timestamps; bounds become first and last timestamps"`
	Trials string `long:"trials" description:"JSON file of per-sample trial columns; runs split at trial changes"`

	globals *GlobalFlags
	streams streams
}

// RatioCommand computes the share of recorded time covered by events.
type RatioCommand struct {
	Events       string  `long:"events" description:"Event table JSON file, or - for stdin" required:"true"`
	Time         string  `long:"time" description:"JSON file of per-sample timestamps" required:"true"`
	Name         string  `long:"name" description:"Event label to measure" required:"true"`
	SamplingRate float64 `long:"sampling-rate" description:"Sampling rate in Hz; 0 infers the interval from timestamps" default:"0"`
	Trials       string  `long:"trials" description:"JSON file of per-sample trial columns; prints one ratio per trial"`

	globals *GlobalFlags
	streams streams
}
