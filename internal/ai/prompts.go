package ai

// auditPrompt is the fixed 16-question audit questionnaire. Question 5 carries
// the KEY_DATE tag instruction; internal/extract depends on the model honoring
// it, so the token must stay byte-identical to extract.KeyDateTag.
const auditPrompt = `
ACT AS A SENIOR ENGINEERING AUDITOR.
Analyze ALL the provided documents (bid notice and annexes) with extreme rigor.
Answer each of the 16 questions below, point by point. Format with Markdown.

1. What is the name of the contracting body?
2. What is the object of the bid? (Complete summary)
3. What is the estimated value for carrying out the services?
4. What platform will the bidding session be held on?
5. What is the date of the bidding session? (Begin your answer EXACTLY with "KEY_DATE: DD/MM/YYYY". If there is no in-person session, put the proposal deadline date in this format).
6. **SCHEDULE**: Dates and deadlines.
7. **JURIDICAL/FISCAL QUALIFICATION**: Requirements.
8. **FINANCIAL**: Ratios (LG, SG, LC) and amounts.
9. What are the technical qualification requirements for this bid? (Detail thoroughly, including declarations and any other required documents)
10. List ALL professionals required by the bid notice and the experience each must have.
11. Do not omit any technical requirement, however simple it may seem.
12. Is any kind of guarantee required? If so, which ones?
13. What does the bid notice say about proposals discounted more than 25% below the global value?
14. What is the format and the period set for the bidding phase?
15. What does the bid notice say about identifying the company when submitting documentation or proposals?
16. Analyze the risks involved in the company's participation in this service.
`

// crossCheckPrompt compares the company archive against a stored bid summary.
// The %s placeholder receives the report content.
const crossCheckPrompt = `
ACT AS AN AUDITOR.
Compare the attached company documents with the following bid summary:

--- BID SUMMARY START ---
%s
--- BID SUMMARY END ---

Produce a Viability Checklist: Bid requires X -> Company has Y -> Verdict (Fit/Unfit/Attention).
`

// askPrompt answers a follow-up question using the stored report as context.
const askPrompt = `Bid context: %s
User question: %s`
