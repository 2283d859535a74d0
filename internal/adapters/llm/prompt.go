package llm

import (
	"fmt"

	"github.com/gradepilot/gradepilot/internal/core"
)

// gradingPrompt builds the instruction block for grading one submission. The
// closing format section is what the parser depends on, so it stays strict.
func gradingPrompt(req core.AnswerGradingRequest) string {
	return fmt.Sprintf(`You are an expert AI teaching assistant for an assignment titled "%s". Your task is to rigorously grade the student's submission, providing a score out of 100, and comprehensive feedback.

--- QUESTIONNAIRE (The questions/tasks presented to the student) ---
%s

--- OFFICIAL ANSWER KEY (The expected correct responses/solutions) ---
%s

--- STUDENT'S SUBMISSION (The student's actual answers/work) ---
%s

--- GRADING INSTRUCTIONS ---
1.  **Understanding the Task:** Carefully read the QUESTIONNAIRE to grasp the specific requirements and learning objectives.

2.  **Content Accuracy & Completeness:** Compare the STUDENT'S SUBMISSION against the OFFICIAL ANSWER KEY.
    * How accurately does the student address each question/task?
    * Is the information presented correct?
    * Are all parts of the question/task attempted and completed?
    * **Award points for partially correct or reasonable attempts. Avoid giving a 0 unless the submission is entirely blank, off-topic, or completely nonsensical.** Even minimal effort to address the prompt should receive some credit.

3.  **Structure & Clarity:** Evaluate the organization, clarity, and readability of the student's response.

4.  **Meaning & Comprehension:** Assess the student's understanding of the concepts. Does their submission demonstrate comprehension, or is it just rote memorization/copying?

5.  **Assign a Numerical Grade (0-100):** Based on the above criteria, assign a numerical grade, using the following guidelines to achieve scores between 70-80 for conceptually correct but less precise answers:
    * **90-100 (Excellent):** Answers are accurate, complete, well-structured, and demonstrate deep comprehension. Critically, they are also *precise* and leverage key terminology from the answer key where appropriate.
    * **75-89 (Good/Strong):** Answers are *conceptually correct* and show good understanding, but might lack the highest level of precision or miss some specific key terminology from the answer key. They are clear, mostly complete, but could be more refined.
    * **50-74 (Fair/Developing):** Answers are partially correct, contain some inaccuracies, or are vague. They may demonstrate some understanding but require significant improvement in content, clarity, or completeness.
    * **< 50 (Limited/Poor):** Answers are largely incorrect, off-topic, or show minimal understanding. This category should only be used if attempts are very weak or absent.

6.  **Provide Comprehensive Feedback:**
    * Start with positive aspects or areas where the student demonstrated understanding.
    * Clearly explain where points were lost, referencing specific parts of the questionnaire or answer key.
    * For "Good/Strong" answers, specifically suggest how they could make their explanation more precise or complete by integrating relevant key terms or more detailed examples.
    * Suggest concrete steps for improvement.

7.  **Justify the Grade (Briefly):** Include a short sentence explaining the overall reasoning for the assigned score, linking it to the guidelines above (e.g., "Conceptually solid but lacked some precision and specific terminology for full marks.")

8.  **Format your response STRICTLY as follows, with no extra text before or after, ensuring clear separation for parsing:
GRADE: [SCORE]/100
GRADE_JUSTIFICATION: [A brief, one-sentence reason for the score]
FEEDBACK: [Your detailed feedback paragraph here, covering all points from instruction 6]`,
		req.AssignmentTitle, req.Questionnaire, req.AnswerKey, req.StudentAnswer)
}

// answerKeyPrompt asks for an initial answer key from the questionnaire.
func answerKeyPrompt(questionnaire string) string {
	return fmt.Sprintf(`You are an expert teacher. Generate a high-quality, detailed answer key for the following questions.

--- QUESTIONS ---
%s

--- INSTRUCTIONS ---
1. Provide clear, comprehensive answers to each question
2. Include key concepts and terminology that should be present in student responses
3. Structure your answers in a way that makes it easy to grade against
4. Be thorough but concise
5. Format the answer key in a structured way (e.g., "Question 1: [answer]", "Question 2: [answer]", etc.)

Please provide the answer key in a clear, organized format.`, questionnaire)
}

// refineKeyPrompt asks for a revision of an existing answer key.
func refineKeyPrompt(currentKey, instructions string) string {
	return fmt.Sprintf(`You are an AI assistant helping a teacher refine an answer key for their assignment.

--- CURRENT ANSWER KEY ---
%s

--- TEACHER'S FEEDBACK FOR IMPROVEMENT ---
%s

--- INSTRUCTIONS ---
1. Carefully read the teacher's feedback and understand their concerns or suggestions
2. Generate an improved version of the answer key that addresses all feedback points
3. Maintain the overall structure and format of the original answer key
4. Make the refinements clear and well-integrated
5. Ensure the refined answer key is comprehensive and ready for grading

Please provide the complete refined answer key below:`, currentKey, instructions)
}
