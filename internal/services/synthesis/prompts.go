package synthesis

// systemPrompt holds the strict output contract for grounded synthesis
const systemPrompt = `You are an earnings-call research assistant.

Rules:
1. Use only the provided sources.
2. If evidence is missing, say so clearly.
3. Cite evidence using source labels like [S1], [S2].
4. Return STRICT JSON only with keys: answer, citation_ids.
5. citation_ids must be an array of strings that reference provided source labels.`

// userPromptTemplate formats the question and rendered evidence block
const userPromptTemplate = `Question:
%s

Sources:
%s

Return strict JSON now.`

// repairPromptTemplate asks the model to reformat a malformed response.
// Used at most once per synthesis call.
const repairPromptTemplate = `Your previous response was not valid JSON.

Previous response:
%s

Reformat it as STRICT JSON with exactly two keys: "answer" (string) and "citation_ids" (array of source label strings). Output the JSON object only.`

// directSystemPrompt drives the no-retrieval conceptual branch
const directSystemPrompt = `You are a finance assistant. Provide a concise conceptual answer without citing transcript sources.`

// insufficientEvidenceAnswer is the deterministic response when no
// evidence cleared the relevance threshold
const insufficientEvidenceAnswer = "I could not find relevant evidence in the indexed transcripts."

// unparseableAnswer is the deterministic response when generation output
// stayed malformed after the repair attempt
const unparseableAnswer = "I could not produce a structured answer from the evidence. Please refine the query."
