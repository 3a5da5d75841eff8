package encode

import (
	"github.com/ausocean/frad/asfh"
	"github.com/ausocean/frad/fourier"
	"github.com/ausocean/frad/internal/logging"
)

const (
	defaultFrameSamples = 2048
	defaultDepth0       = 32
	defaultDepth1       = 16
	defaultDepth4       = 16
)

// Options carries the per-stream encode configuration. It has no flag
// parsing and no file I/O; that is the external CLI's job.
type Options struct {
	Profile      uint8
	SampleRate   uint32
	Channels     int
	Depth        int // raw bit depth (e.g. 16, 24, 32), looked up in the profile's depth table
	Level        uint8
	LittleEndian bool

	EccEnabled bool
	EccRatio   [2]uint16 // data, parity bytes per RS block

	OverlapNumerator uint8 // compact profiles only; 0 disables overlap
	FrameSamples     int   // fresh samples per frame; compact profiles round it up to the next allowed table entry

	Logger logging.Logger
}

type optionField struct {
	name     string
	validate func(o *Options)
}

var optionFields = []optionField{
	{
		name: "Profile",
		validate: func(o *Options) {
			switch o.Profile {
			case asfh.Profile0, asfh.Profile1, asfh.Profile4:
			default:
				o.logInvalid("Profile", asfh.Profile0)
				o.Profile = asfh.Profile0
			}
		},
	},
	{
		name: "SampleRate",
		validate: func(o *Options) {
			if o.SampleRate == 0 {
				o.logInvalid("SampleRate", uint32(48000))
				o.SampleRate = 48000
			}
			if asfh.IsCompact(o.Profile) {
				for _, r := range asfh.Srates {
					if r == o.SampleRate {
						return
					}
				}
				o.logInvalid("SampleRate", uint32(48000))
				o.SampleRate = 48000
			}
		},
	},
	{
		name: "Channels",
		validate: func(o *Options) {
			if o.Channels <= 0 {
				o.logInvalid("Channels", 2)
				o.Channels = 2
			}
		},
	},
	{
		name: "Depth",
		validate: func(o *Options) {
			table, def := depthTableFor(o.Profile)
			for _, d := range table {
				if d == o.Depth {
					return
				}
			}
			o.logInvalid("Depth", def)
			o.Depth = def
		},
	},
	{
		name: "EccRatio",
		validate: func(o *Options) {
			if !o.EccEnabled {
				return
			}
			if o.EccRatio[0] == 0 {
				o.logInvalid("EccRatio.data", uint16(96))
				o.EccRatio[0] = 96
			}
			if o.EccRatio[1] == 0 {
				o.logInvalid("EccRatio.parity", uint16(24))
				o.EccRatio[1] = 24
			}
		},
	},
	{
		name: "OverlapNumerator",
		validate: func(o *Options) {
			if !asfh.IsCompact(o.Profile) && o.OverlapNumerator != 0 {
				o.logInvalid("OverlapNumerator", uint8(0))
				o.OverlapNumerator = 0
			}
			if o.OverlapNumerator == 1 {
				o.OverlapNumerator = 2
			}
		},
	},
	{
		name: "FrameSamples",
		validate: func(o *Options) {
			if asfh.IsLossless(o.Profile) && o.FrameSamples <= 0 {
				o.logInvalid("FrameSamples", defaultFrameSamples)
				o.FrameSamples = defaultFrameSamples
			}
		},
	},
}

func depthTableFor(profile uint8) ([]int, int) {
	switch profile {
	case asfh.Profile1:
		return fourier.Depths1[:], defaultDepth1
	case asfh.Profile4:
		return fourier.Depths4[:], defaultDepth4
	default:
		return fourier.Depths0[:], defaultDepth0
	}
}

func (o *Options) logInvalid(name string, def interface{}) {
	if o.Logger == nil {
		return
	}
	o.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// Validate checks o's fields and defaults any that are unset or invalid,
// running each field's validator in turn.
func (o *Options) Validate() error {
	for _, f := range optionFields {
		if f.validate != nil {
			f.validate(o)
		}
	}
	return nil
}
