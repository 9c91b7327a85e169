package llm

const intentPrompt = `You are an intent classifier for a real-estate operations assistant.

Classify the user message into exactly one of these intents:
- property.create: the user wants to register a new property
- property.list: the user wants to see their properties
- property.delete: the user wants to remove a property
- property.switch: the user wants to change which property is being discussed
- general_conversation: anything else

Respond with ONLY the intent label. No explanation, no punctuation.

User message:
%s`

const summarizePrompt = `You are a conversation summarizer for a real-estate operations assistant.

Condense the following conversation into a short summary that preserves:
- which properties were discussed (addresses, identifiers)
- any numbers provided (prices, market values, repair estimates, ARV)
- decisions made and steps completed

Conversation:
%s

Respond with ONLY the summary text. No explanation, no formatting.`
