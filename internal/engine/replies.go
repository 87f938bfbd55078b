package engine

// cannedReplies is the fixed pool the simulated assistant draws from,
// one picked uniformly at random per reply.
var cannedReplies = []string{
	"That's an interesting question! Based on my analysis, I would suggest exploring multiple approaches to find the best solution.",
	"I understand what you're asking. Let me break this down for you in a clear and structured way.",
	"Great question! Here's what I think: This requires careful consideration of several factors.",
	"I can help you with that. The key here is to focus on the fundamentals and build from there.",
	"Thanks for sharing that! From my perspective, the most important thing to consider is the long-term impact.",
	"Absolutely! I've processed your request and here's my recommendation based on current best practices.",
	"That's a valid point. Let me provide you with a comprehensive answer that covers all aspects.",
	"Interesting approach! I would add that it's also important to consider alternative solutions.",
}

// sampleHistory seeds the synthesized older-message pages.
var sampleHistory = []string{
	"Can you explain how React hooks work?",
	"Sure! React hooks are functions that let you use state and lifecycle features in functional components.",
	"What's the difference between useMemo and useCallback?",
	"useMemo memoizes values, while useCallback memoizes functions. Both help optimize performance.",
	"How do I optimize my Next.js app?",
	"Great question! Consider implementing code splitting, image optimization, and using the built-in Image component.",
}
