package prompt

const opening = "Your task is to use NCBI Web APIs (e.g., Eutils, BLAST) to answer genomic questions.\n"

const eutilsInstructions = "You can call Eutils by: \"[https://eutils.ncbi.nlm.nih.gov/entrez/eutils/{esearch|efetch|esummary}.fcgi?db={gene|snp|omim}&retmax={}&{term|id}={term|id}]\".\n" +
	"esearch: input is a search term and output is database id(s).\n" +
	"efetch/esummary: input is database id(s) and output is full records or summaries.\n" +
	"Database: gene is for genes, snp is for SNPs, and omim is for genetic diseases.\n\n"

const blastInstructions = "For DNA sequences, use BLAST: \"[https://blast.ncbi.nlm.nih.gov/blast/Blast.cgi?CMD={Put|Get}&PROGRAM=blastn&MEGABLAST=on&DATABASE=nt&FORMAT_TYPE={XML|Text}&QUERY={sequence}&HITLIST_SIZE={n}]\".\n" +
	"BLAST maps DNA sequences to chromosome locations.\n\n"

const examplesHeader = "Here are some examples:\n\n"

// Live calls embedded in the worked examples.
const (
	geneAliasSearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi?db=gene&retmax=5&retmode=json&sort=relevance&term=LMP10"
	geneAliasFetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi?db=gene&retmax=5&retmode=json&id=19171,5699,8138"
	snpSummaryURL      = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi?db=snp&retmax=10&retmode=json&id=1217074595"
	diseaseSearchURL   = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi?db=omim&retmax=20&retmode=json&sort=relevance&term=Meesmann+corneal+dystrophy"
	diseaseSummaryURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi?db=omim&retmax=20&retmode=json&id=618767,601687,300778,148043,122100"
	blastSubmitURL     = "https://blast.ncbi.nlm.nih.gov/blast/Blast.cgi?CMD=Put&PROGRAM=blastn&MEGABLAST=on&DATABASE=nt&FORMAT_TYPE=XML&QUERY=ATTCTGCCTTTAGTAATTTGATGACAGAGACTTCTTGGGAACCACAGCCAGGGAGCCACCCTTTACTCCACCAACAGGTGGCTTATATCCAATCTGAGAAAGAAAGAAAAAAAAAAAAGTATTTCTCT&HITLIST_SIZE=5"
)

// Literal answers of the worked examples.
const (
	AnswerGeneAlias      = "PSMB10"
	AnswerSNPGene        = "LINC01270"
	AnswerGeneDisease    = "KRT12, KRT3"
	AnswerBlastAlignment = "chr15:91950805-91950932"
)

// example is a worked example whose annotations come from plain fetches.
type example struct {
	toggle   int
	question string
	urls     []string
	answer   string
}
