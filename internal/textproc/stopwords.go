package textproc

var defaultStopwords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "is", "are", "was", "were", "be", "been", "being",
	"this", "that", "these", "those", "i", "you", "he", "she", "it", "we", "they",
	"的", "了", "在", "是", "我", "有", "和", "就", "不", "人", "都", "一", "一个",
	"上", "也", "很", "到", "说", "要", "去", "你", "会", "着", "没有", "看", "好",
	"自己", "这", "那", "他", "她", "它", "我们", "你们", "他们",
}

// DefaultStopwords returns a fresh copy of the curated English and Chinese function-word set.
func DefaultStopwords() map[string]struct{} {
	set := make(map[string]struct{}, len(defaultStopwords))
	for _, w := range defaultStopwords {
		set[w] = struct{}{}
	}
	return set
}
