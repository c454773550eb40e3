package matcher

import "regexp"

// All patterns run over normalized (lowercased, whitespace-collapsed) text.
// Go's RE2 has no lookahead, so each pattern rule carries explicit `also`
// and `exclude` companions instead; the triple forms one (predicate, outcome)
// pair evaluated in table order

// vendorRule is an unambiguous non-NVIDIA product signature
type vendorRule struct {
	name   string
	reason string
	re     *regexp.Regexp
}

var vendorRules = []vendorRule{
	{
		name:   "amd",
		reason: "AMD GPU",
		re:     regexp.MustCompile(`\bradeon\b|\brx\s?\d{3,4}\b|\binstinct mi\d{2,3}\b|\bamd\b`),
	},
	{
		name:   "intel",
		reason: "Intel GPU",
		re:     regexp.MustCompile(`\bintel arc\b|\barc [ab]\d{3}\b|\bdata center gpu\b|\bgpu flex \d{3}\b|\bgpu max \d{4}\b`),
	},
}

// accessoryRule is a non-GPU keyword family (accessories, add-ons, peripherals)
type accessoryRule struct {
	family string
	reason string
	re     *regexp.Regexp
}

var accessoryRules = []accessoryRule{
	{
		family: "nvlink_bridge",
		reason: "NVLINK bridge/connector accessory",
		// bridge wording trails the NVLINK token by a few filler words
		// ("3-SLOT BRG", "2-Slot Bridge"), so allow intervening tokens
		re:     regexp.MustCompile(`\bnvlink\b(?:\s+\S+){0,3}\s+(?:bridge|brg|connector|link board)\b|\bsli\s?bridge\b`),
	},
	{
		family: "capture_device",
		reason: "capture device",
		re:     regexp.MustCompile(`\b(?:capture card|video capture|game capture|cam link|camlink|elgato)\b`),
	},
	{
		family: "sync_module",
		reason: "sync module accessory",
		re:     regexp.MustCompile(`\b(?:quadro sync|sync ii|sync module|sync card)\b`),
	},
	{
		family: "streaming_encoder",
		reason: "streaming encoder",
		re:     regexp.MustCompile(`\b(?:streaming encoder|video encoder card|transcoder card)\b`),
	},
	{
		family: "parts_only",
		reason: "GPU part/accessory, not a card",
		re:     regexp.MustCompile(`\b(?:waterblock|water block|backplate|shroud|bracket only|box only|fan (?:only|replacement)|heatsink only)\b`),
	},
}

// patternRule maps a regex predicate to a canonical model at fixed confidence.
// `also` must match too when set; `exclude` vetoes the rule when it matches.
// Table order is precedence: more specific SKUs come before their confusables
type patternRule struct {
	id      string
	key     string
	re      *regexp.Regexp
	also    *regexp.Regexp
	exclude *regexp.Regexp
}

func patternTable() []patternRule {
	return []patternRule{
		// workstation / datacenter first, they carry the confusable "6000"-style numbers
		{
			id: "rtx_pro_6000_blackwell", key: "RTX_PRO_6000_BLACKWELL",
			re: regexp.MustCompile(`\brtx\s?pro\s?6000\b`),
		},
		{
			id: "quadro_rtx_6000", key: "QUADRO_RTX_6000",
			re: regexp.MustCompile(`\bquadro\s?rtx\s?6000\b`),
		},
		{
			id: "rtx_6000_ada", key: "RTX_6000_ADA",
			re:      regexp.MustCompile(`\brtx\s?6000\b`),
			exclude: regexp.MustCompile(`\bpro\s?6000\b|\bquadro\b`),
		},
		{id: "rtx_a4000", key: "RTX_A4000", re: regexp.MustCompile(`\brtx\s?a4000\b`)},
		{id: "rtx_a5000", key: "RTX_A5000", re: regexp.MustCompile(`\brtx\s?a5000\b`)},
		{id: "rtx_a6000", key: "RTX_A6000", re: regexp.MustCompile(`\brtx\s?a6000\b`)},
		{
			id: "a100_80gb", key: "A100_PCIE_80GB",
			re:      regexp.MustCompile(`\ba100\b`),
			also:    regexp.MustCompile(`\b80\s?gb\b`),
			exclude: regexp.MustCompile(`\bsxm\d?\b|\bhgx\b`),
		},
		{
			id: "a100_40gb", key: "A100_PCIE_40GB",
			re:      regexp.MustCompile(`\ba100\b`),
			also:    regexp.MustCompile(`\b40\s?gb\b`),
			exclude: regexp.MustCompile(`\bsxm\d?\b|\bhgx\b`),
		},
		{
			id: "h100_pcie", key: "H100_PCIE",
			re:      regexp.MustCompile(`\bh100\b`),
			exclude: regexp.MustCompile(`\bsxm\d?\b|\bhgx\b|\bnvl\b`),
		},
		{id: "a30", key: "A30", re: regexp.MustCompile(`\ba30\b`)},
		{id: "a40", key: "A40", re: regexp.MustCompile(`\ba40\b`)},
		{
			id: "v100_16gb", key: "V100_PCIE_16GB",
			re:      regexp.MustCompile(`\bv100\b`),
			exclude: regexp.MustCompile(`\b32\s?gb\b|\bsxm\d?\b`),
		},
		{id: "t4", key: "T4", re: regexp.MustCompile(`\b(?:tesla\s?)?t4\b`)},
		{id: "l40s", key: "L40S", re: regexp.MustCompile(`\bl40s\b`)},
		{id: "l4", key: "L4", re: regexp.MustCompile(`\bl4\b`)},

		// consumer SKUs, Ti/SUPER variants before the bare number
		{
			id: "rtx_4070_ti", key: "RTX_4070_TI",
			re:      regexp.MustCompile(`\brtx\s?4070\s?ti\b`),
			exclude: regexp.MustCompile(`\bti\s?super\b`),
		},
		{
			id: "rtx_4070", key: "RTX_4070",
			re:      regexp.MustCompile(`\brtx\s?4070\b`),
			exclude: regexp.MustCompile(`\b4070\s?(?:ti|super)\b`),
		},
		{
			id: "rtx_4080", key: "RTX_4080",
			re:      regexp.MustCompile(`\brtx\s?4080\b`),
			exclude: regexp.MustCompile(`\b4080\s?super\b`),
		},
		{id: "rtx_4090", key: "RTX_4090", re: regexp.MustCompile(`\brtx\s?4090\b`)},
		{id: "rtx_5090", key: "RTX_5090", re: regexp.MustCompile(`\brtx\s?5090\b`)},
		{
			id: "rtx_3090_ti", key: "RTX_3090_TI",
			re: regexp.MustCompile(`\brtx\s?3090\s?ti\b|\b3090\s?ti\b`),
		},
		{
			id: "rtx_3090", key: "RTX_3090",
			re:      regexp.MustCompile(`\brtx\s?3090\b`),
			exclude: regexp.MustCompile(`\b3090\s?ti\b`),
		},
		{
			id: "rtx_3080", key: "RTX_3080",
			re:      regexp.MustCompile(`\brtx\s?3080\b`),
			exclude: regexp.MustCompile(`\b3080\s?ti\b`),
		},
		{
			id: "rtx_3060", key: "RTX_3060",
			re:      regexp.MustCompile(`\brtx\s?3060\b`),
			exclude: regexp.MustCompile(`\b3060\s?ti\b`),
		},
		{
			id: "rtx_2080_ti", key: "RTX_2080_TI",
			re: regexp.MustCompile(`\brtx\s?2080\s?ti\b|\b2080\s?ti\b`),
		},
		{
			id: "gtx_1080_ti", key: "GTX_1080_TI",
			re: regexp.MustCompile(`\bgtx\s?1080\s?ti\b|\b1080\s?ti\b`),
		},
	}
}
