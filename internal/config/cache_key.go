package config

import (
	"fmt"
)

// StorageKeyStruct builds the persisted keys of the active exam and history.
type StorageKeyStruct struct {
	Prefix string
}

func NewStorageKeyStruct(prefix string) *StorageKeyStruct {
	return &StorageKeyStruct{Prefix: prefix}
}

// ExamSessionStartKey returns the key holding the exam start timestamp (ms)
func (k *StorageKeyStruct) ExamSessionStartKey() string {
	return fmt.Sprintf("%s:exam:session_start", k.Prefix)
}

// ExamQuestionIDsKey returns the key holding the ordered question ids
func (k *StorageKeyStruct) ExamQuestionIDsKey() string {
	return fmt.Sprintf("%s:exam:question_ids", k.Prefix)
}

// ExamShuffledOptionsKey returns the key holding per-question option permutations
func (k *StorageKeyStruct) ExamShuffledOptionsKey() string {
	return fmt.Sprintf("%s:exam:shuffled_options", k.Prefix)
}

// ExamAnswersKey returns the key holding the exam answers
func (k *StorageKeyStruct) ExamAnswersKey() string {
	return fmt.Sprintf("%s:exam:answers", k.Prefix)
}

// ExamFlagsKey returns the key holding the flagged question ids
func (k *StorageKeyStruct) ExamFlagsKey() string {
	return fmt.Sprintf("%s:exam:flags", k.Prefix)
}

// ExamWarnedKey marks that the time warning was already sent
func (k *StorageKeyStruct) ExamWarnedKey() string {
	return fmt.Sprintf("%s:exam:warned", k.Prefix)
}

// HistoryKey returns the key holding the exam history list
func (k *StorageKeyStruct) HistoryKey() string {
	return fmt.Sprintf("%s:exam:history", k.Prefix)
}

// ActiveExamKeys lists every key of an in-progress exam.
func (k *StorageKeyStruct) ActiveExamKeys() []string {
	return []string{
		k.ExamSessionStartKey(),
		k.ExamQuestionIDsKey(),
		k.ExamShuffledOptionsKey(),
		k.ExamAnswersKey(),
		k.ExamFlagsKey(),
		k.ExamWarnedKey(),
	}
}

// StorageKey uses the default "prep" prefix.
var StorageKey = NewStorageKeyStruct("prep")
