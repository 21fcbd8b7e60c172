package student

// Stage prompts. Each demands a fenced JSON object; the parsing side of
// that contract lives in the structured package.

const planPrompt = `%s

You are an AI system that uses external documents to answer questions.

Step 1: Read the above question carefully.
Step 2: Decide whether answering this question requires additional information not found in your internal knowledge.
Step 3: If external information is needed, generate a list of **concise and specific search queries** that would help retrieve the necessary information from a document database or knowledge base.

Guidelines:
- Each query should be short, factual, and optimized for retrieval.
- Focus on key concepts, entities, or facts needed to answer the question.
- Do not explain or justify your reasoning.
- Do not include any additional output besides the JSON.

Respond strictly in the following JSON format:

` + "```json" + `
{"get_knowledge": ["query 1", "query 2", "query 3"]}
` + "```" + `
`

const retrievePrompt = `%s

Read the above question list and pick out ONLY key phrases needed for knowledge retrieval.
The key phrases will be used to perform knowledge retrieval on a vector database to retrieve relevant documents.
The key phrases have to be related to answering the questions.

Stop and think before responding.

<example>
Input:
["What is data analytics about?", "What are some data analytics libraries in Python?"]
Response:
{"key_phrases": ["data analytics", "Python data analytics libraries"]}
<example>

Do not include any other text or explanation in your response.
Ensure no redundant phrases are included in the response.

Provide your structured response in the JSON format below:

` + "```json" + `
    {"key_phrases": [List of key phrases to be used in knowledge retrieval]}
` + "```" + `
`

const answerPrompt = `QUESTION: %s

CONTENT: %s

Read and answer the above multiple-choice question and use the content as textbook knowledge.
There is only ONE correct answer.

If you are not sure about the answer, please select the best possible answer even if you have to guess.
The confidence score should reflect how confident you are about your answer.
If you are not confident, please provide a low confidence score.
If you are very confident, please provide a high confidence score.
The answer should be in the format of a list with one element, which is the correct option letter (e.g., ["A"]).
For justification, provide a brief explanation of how you arrived at the answer based on the content provided.
Provide quotes from the content to support your answer if possible.

Stop and think before responding.
Provide your structured response in the JSON format below:
` + "```json" + `
{"final_answer": ["<correct option letter>"], "confidence_score": 0.0, "justification": "how you arrived at the answer with references to the content"}
` + "```" + `
`

const critiquePrompt = `QUESTION: %s

CONTENT: %s

With the content given, read the above question and determine the difficulty level of answering the question.
If the question is poor, critique how the question can be improved to be more aligned with the content.

Stop and think before responding.

Provide your structured response in the JSON format below:

` + "```json" + `
    {"comment": comment about the question alignment with the content}
` + "```" + `
`

// Baseline variants answer from their system-prompt knowledge alone,
// so their prompts omit the retrieved content block.

const baselineAnswerPrompt = `QUESTION: %s

Read and answer the above multiple-choice question and use the content as textbook knowledge.
There is only ONE correct answer.

If you are not sure about the answer, please select the best possible answer even if you have to guess.
The confidence score should reflect how confident you are about your answer.
If you are not confident, please provide a low confidence score.
If you are very confident, please provide a high confidence score.
The answer should be in the format of a list with one element, which is the correct option letter (e.g., ["A"]).
For justification, provide a brief explanation of how you arrived at the answer based on the content provided.
Provide quotes from the content to support your answer if possible.

Stop and think before responding.
Provide your structured response in the JSON format below:
` + "```json" + `
{"final_answer": ["<correct option letter>"], "confidence_score": 0.0, "justification": "how you arrived at the answer with references to the content"}
` + "```" + `
`

const baselineCritiquePrompt = `QUESTION: %s

Read the above question and determine the difficulty level of answering the question.
If the question is poor, critique how the question can be improved to be more aligned with the content in your system prompt.

Stop and think before responding.

Provide your structured response in the JSON format below strictly:

` + "```json" + `
    {"comment": comment about the question alignment with the content}
` + "```" + `
`
