package anthropic

// CachedSystemBlocks constructs system content blocks with a 5-minute
// cache breakpoint. A scout run reuses the same system prompt for every
// per-candidate extraction, so later calls within the run hit the warm
// cache.
func CachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text: text,
			CacheControl: &CacheControl{
				TTL: "5m",
			},
		},
	}
}
